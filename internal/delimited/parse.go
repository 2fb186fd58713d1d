// Package delimited parses delimited billing exports (CSV or TSV) into
// normalized claim records. The header has no fixed schema; columns are
// resolved through the shared alias table.
package delimited

import (
	"fmt"
	"math"
	"strings"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/header"
	"github.com/gyeh/claim-rates/internal/normalize"
)

// Parse converts raw delimited text into claim records. fallbackProvider is
// used for rows with no provider column or an empty provider cell. Malformed
// rows are skipped; a missing procedure-code column is a hard error.
func Parse(text, fallbackProvider string) ([]claim.Claim, error) {
	rows := SplitRows(text, DetectDelimiter(text))
	if len(rows) == 0 {
		return nil, nil
	}

	cols := header.Resolve(rows[0])
	if _, ok := cols[header.FieldCode]; !ok {
		return nil, fmt.Errorf("required procedure code column not found (expected one of: cpt, procedure code, proc code)")
	}

	if fallbackProvider == "" {
		fallbackProvider = claim.UnknownProvider
	}

	var claims []claim.Claim
	for _, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, cols, header.FieldCode))
		if code == "" {
			continue
		}

		code, class := claim.Classify(code)
		date, sortKey := normalize.Date(cell(row, cols, header.FieldServiceDate))
		charge := math.Abs(normalize.Money(cell(row, cols, header.FieldCharge)))
		paid := math.Abs(normalize.Money(cell(row, cols, header.FieldPaid)))

		claims = append(claims, claim.Claim{
			ID:            len(claims) + 1,
			Provider:      textOr(cell(row, cols, header.FieldProvider), fallbackProvider),
			ProcedureCode: code,
			CodeClass:     class,
			Units:         normalize.Units(cell(row, cols, header.FieldUnits)),
			Charge:        charge,
			Paid:          paid,
			IsPaid:        paid > claim.PaidThreshold,
			PatientID:     textOr(cell(row, cols, header.FieldPatientID), claim.UnknownID),
			PatientName:   textOr(cell(row, cols, header.FieldPatientName), claim.UnknownPatient),
			Payer:         normalize.Payer(cell(row, cols, header.FieldPayer)),
			ServiceDate:   date,
			SortKey:       sortKey,
		})
	}
	return claims, nil
}

// DetectDelimiter inspects the first non-blank line: tab wins if present,
// comma otherwise.
func DetectDelimiter(text string) byte {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.ContainsRune(line, '\t') {
			return '\t'
		}
		return ','
	}
	return ','
}

// SplitRows tokenizes text into rows of fields. Inside a quoted field a
// doubled quote is a literal quote, and delimiter and newline characters are
// literal; carriage returns outside quotes are dropped.
func SplitRows(text string, delim byte) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			field.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case delim:
			endField()
		case '\n':
			endRow()
		case '\r':
			// dropped outside quotes
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	// Blank trailing lines produce single-empty-field rows; drop them.
	filtered := rows[:0]
	for _, r := range rows {
		if len(r) == 1 && strings.TrimSpace(r[0]) == "" {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func textOr(s, fallback string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return fallback
}
