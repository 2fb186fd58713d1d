// Package header resolves the freely named columns of billing exports to a
// canonical field set. Each logical field carries an ordered candidate list;
// the first candidate present in a header wins. The table is shared by both
// the delimited-text and report parsers so aliasing stays independent of any
// one file format.
package header

import "strings"

// Logical field names.
const (
	FieldCode            = "procedure_code"
	FieldUnits           = "units"
	FieldCharge          = "charge"
	FieldPaid            = "paid"
	FieldPatientID       = "patient_id"
	FieldPatientName     = "patient_name"
	FieldPayer           = "payer"
	FieldProvider        = "provider"
	FieldServiceDate     = "service_date"
	FieldDescription     = "description"
	FieldAppliedPayments = "applied_payments"
)

// aliases maps each logical field to its ordered candidate header names,
// compared after Normalize. Order matters: earlier candidates win.
var aliases = map[string][]string{
	FieldCode: {
		"cpt", "cpt code", "procedure code", "proc code", "procedure_code",
		"hcpcs", "code",
	},
	FieldUnits: {"units", "quantity", "qty", "unit"},
	FieldCharge: {
		"charges", "charge", "billed amount", "billed", "charge amount",
		"amount billed",
	},
	FieldPaid: {
		"insurance_payment", "insurance payment", "payment", "paid",
		"amount paid", "payments",
	},
	FieldPatientID: {
		"patient_id", "patient id", "account", "acct", "account number", "mrn",
	},
	FieldPatientName: {"patient_name", "patient name", "patient", "name"},
	FieldPayer: {
		"payer", "payor", "insurance", "carrier", "insurance company", "plan",
	},
	FieldProvider: {
		"provider", "rendering provider", "physician", "doctor",
	},
	FieldServiceDate: {
		"date_of_service", "date of service", "dos", "service_date",
		"service date", "date",
	},
	FieldDescription:     {"desc.", "desc", "description"},
	FieldAppliedPayments: {"applied payments", "applied payment"},
}

// resolveOrder fixes the iteration order over aliases so resolution is
// deterministic regardless of map ordering.
var resolveOrder = []string{
	FieldCode, FieldUnits, FieldCharge, FieldPaid, FieldPatientID,
	FieldPatientName, FieldPayer, FieldProvider, FieldServiceDate,
	FieldDescription, FieldAppliedPayments,
}

// Normalize lowercases and trims a header cell for comparison.
func Normalize(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}

// Resolve maps logical fields to column positions by exact match on the
// normalized header cells. Fields with no matching candidate are absent from
// the result.
func Resolve(cells []string) map[string]int {
	return resolve(cells, false)
}

// ResolveLoose is Resolve with substring matching, for spreadsheet reports
// whose header cells carry decoration around the column name
// (e.g. "Date of Service:"). A candidate matches if the normalized cell
// contains it.
func ResolveLoose(cells []string) map[string]int {
	return resolve(cells, true)
}

func resolve(cells []string, loose bool) map[string]int {
	normalized := make([]string, len(cells))
	exact := make(map[string]int, len(cells))
	for i, c := range cells {
		n := Normalize(c)
		normalized[i] = n
		if _, seen := exact[n]; !seen {
			exact[n] = i
		}
	}

	cols := make(map[string]int)
	for _, field := range resolveOrder {
	candidates:
		for _, name := range aliases[field] {
			if i, ok := exact[name]; ok {
				cols[field] = i
				break
			}
			if !loose {
				continue
			}
			for i, cell := range normalized {
				if cell != "" && strings.Contains(cell, name) {
					cols[field] = i
					break candidates
				}
			}
		}
	}
	return cols
}
