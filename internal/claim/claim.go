// Package claim defines the normalized claim record produced by the parsers
// and consumed by every downstream aggregator.
package claim

import "strings"

// Placeholder values used when a source file carries no usable field.
const (
	UnknownProvider = "Unknown Provider"
	UnknownPayer    = "Unknown Payer"
	UnknownPatient  = "Unknown Patient"
	UnknownID       = "Unknown ID"

	// UnknownDate is the service-date value for claims whose date could not
	// be parsed. Its sort key is 0, so unknown-dated claims sort first under
	// an ascending numeric sort.
	UnknownDate = "unknown"
)

// PaidThreshold is the payment amount above which a claim line counts as paid.
const PaidThreshold = 0.01

// CodeClass tags a procedure code by the shape of its first character.
type CodeClass string

const (
	CodeAlphaPrefixed CodeClass = "alpha_prefixed" // A, Q, or L prefix
	CodeNumeric       CodeClass = "numeric"
	CodeOther         CodeClass = "other"
)

// Claim is one normalized billed procedure line. Immutable once constructed.
type Claim struct {
	ID            int       `json:"id"`
	Provider      string    `json:"provider"`
	ProcedureCode string    `json:"procedure_code"`
	CodeClass     CodeClass `json:"code_class"`
	Units         float64   `json:"units"`
	Charge        float64   `json:"charge"`
	Paid          float64   `json:"paid"`
	IsPaid        bool      `json:"is_paid"`
	PatientID     string    `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	Payer         string    `json:"payer"`
	ServiceDate   string    `json:"service_date"` // YYYY-MM-DD or "unknown"
	SortKey       int64     `json:"sort_key"`     // epoch seconds, 0 when unknown
}

// Classify uppercases a procedure code and tags it by its first character:
// A/Q/L → alpha-prefixed, digit → numeric, anything else → other.
func Classify(code string) (string, CodeClass) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", CodeOther
	}
	switch c := code[0]; {
	case c == 'A' || c == 'Q' || c == 'L':
		return code, CodeAlphaPrefixed
	case c >= '0' && c <= '9':
		return code, CodeNumeric
	default:
		return code, CodeOther
	}
}

// Merge concatenates independently parsed claim lists and reassigns IDs
// sequentially from 1 so the merged batch has dense unique identifiers.
func Merge(lists ...[]Claim) []Claim {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	merged := make([]Claim, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	for i := range merged {
		merged[i].ID = i + 1
	}
	return merged
}
