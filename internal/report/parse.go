// Package report parses unstructured spreadsheet billing reports. A report
// is a 2-D cell grid with a header row anchored by a date-of-service column;
// the grid is classified once as either an applied-payments report or a
// patient-visit report and handed to the matching extractor.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/header"
	"github.com/gyeh/claim-rates/internal/normalize"
)

// Parse extracts claim records from a report grid. fallbackProvider applies
// to rows with no preceding provider context. The grid must contain a header
// row with a date-of-service column; anything else is a hard error.
func Parse(grid [][]string, fallbackProvider string) ([]claim.Claim, error) {
	headerIdx := findHeaderRow(grid)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no date of service header found in report")
	}
	if fallbackProvider == "" {
		fallbackProvider = claim.UnknownProvider
	}

	cols := header.ResolveLoose(grid[headerIdx])
	rows := grid[headerIdx+1:]

	if _, ok := cols[header.FieldAppliedPayments]; ok {
		return extractPayments(rows, cols, fallbackProvider), nil
	}
	return extractVisits(rows, cols, fallbackProvider), nil
}

// findHeaderRow returns the index of the first row containing a
// date-of-service header cell, or -1.
func findHeaderRow(grid [][]string) int {
	for i, row := range grid {
		for _, c := range row {
			n := header.Normalize(c)
			if n == "dos" || strings.Contains(n, "date of service") {
				return i
			}
		}
	}
	return -1
}

// extractPayments handles the applied-payments layout. The report carries no
// units or charge columns: units default to 1 and charge to 0. Rows reading
// "provider name: X" update the running provider and emit nothing.
func extractPayments(rows [][]string, cols map[string]int, fallbackProvider string) []claim.Claim {
	provider := fallbackProvider

	var claims []claim.Claim
	for _, row := range rows {
		if strings.Contains(flatten(row), "provider name:") {
			if v, ok := keyValue(row, "provider name"); ok && v != "" {
				provider = v
			}
			continue
		}

		dos := strings.TrimSpace(cell(row, cols, header.FieldServiceDate))
		code := strings.TrimSpace(cell(row, cols, header.FieldCode))
		if dos == "" || code == "" {
			continue
		}
		// Adjustment lines reverse earlier payments; they are not claims.
		if desc := cell(row, cols, header.FieldDescription); strings.Contains(strings.ToLower(desc), "adj") {
			continue
		}

		code, class := claim.Classify(code)
		date, sortKey := normalize.Date(dos)
		paid := math.Abs(normalize.Money(cell(row, cols, header.FieldAppliedPayments)))

		claims = append(claims, claim.Claim{
			ID:            len(claims) + 1,
			Provider:      provider,
			ProcedureCode: code,
			CodeClass:     class,
			Units:         1,
			Charge:        0,
			Paid:          paid,
			IsPaid:        paid > claim.PaidThreshold,
			PatientID:     textOr(cell(row, cols, header.FieldPatientID), claim.UnknownID),
			PatientName:   textOr(cell(row, cols, header.FieldPatientName), claim.UnknownPatient),
			Payer:         normalize.Payer(cell(row, cols, header.FieldPayer)),
			ServiceDate:   date,
			SortKey:       sortKey,
		})
	}
	return claims
}

// visitContext is the running patient/insurance state threaded across rows
// of a patient-visit report. Context rows replace parts of it; data rows
// inherit whatever was most recently seen.
type visitContext struct {
	patientName string
	patientID   string
	payer       string
	provider    string
}

// extractVisits handles the patient-visit layout, where patient and
// insurance details arrive as inline key/value rows above the claim lines
// they apply to.
func extractVisits(rows [][]string, cols map[string]int, fallbackProvider string) []claim.Claim {
	ctx := visitContext{
		patientName: claim.UnknownPatient,
		patientID:   claim.UnknownID,
		payer:       claim.UnknownPayer,
		provider:    fallbackProvider,
	}

	var claims []claim.Claim
	for _, row := range rows {
		flat := flatten(row)
		if strings.Contains(flat, "sub total") || strings.Contains(flat, "page:") {
			continue
		}

		if rowStartsWith(row, "patient:") {
			ctx.patientName = claim.UnknownPatient
			ctx.patientID = claim.UnknownID
			if v, ok := prefixValue(row, "patient"); ok && v != "" {
				ctx.patientName = v
			}
			if v, ok := prefixValue(row, "id"); ok && v != "" {
				ctx.patientID = v
			}
			continue
		}
		if rowStartsWith(row, "insurance:") {
			if v, ok := prefixValue(row, "insurance"); ok {
				ctx.payer = normalize.Payer(v)
			}
			if v, ok := prefixValue(row, "provider"); ok && v != "" {
				ctx.provider = v
			}
			continue
		}

		dos := cell(row, cols, header.FieldServiceDate)
		if !normalize.LooksLikeDate(dos) {
			continue
		}
		code := strings.TrimSpace(cell(row, cols, header.FieldCode))
		if code == "" {
			continue
		}

		code, class := claim.Classify(code)
		date, sortKey := normalize.Date(dos)
		charge := math.Abs(normalize.Money(cell(row, cols, header.FieldCharge)))
		paid := math.Abs(normalize.Money(cell(row, cols, header.FieldPaid)))

		claims = append(claims, claim.Claim{
			ID:            len(claims) + 1,
			Provider:      ctx.provider,
			ProcedureCode: code,
			CodeClass:     class,
			Units:         normalize.Units(cell(row, cols, header.FieldUnits)),
			Charge:        charge,
			Paid:          paid,
			IsPaid:        paid > claim.PaidThreshold,
			PatientID:     ctx.patientID,
			PatientName:   ctx.patientName,
			Payer:         ctx.payer,
			ServiceDate:   date,
			SortKey:       sortKey,
		})
	}
	return claims
}

// keyValue locates the cell containing key (case-insensitive). The value is
// the remainder of that cell after the key and any colon, or — when the cell
// holds only the key — the next non-empty cell on the row.
func keyValue(row []string, key string) (string, bool) {
	for i, c := range row {
		pos := strings.Index(strings.ToLower(c), key)
		if pos < 0 {
			continue
		}
		if rest := trimKeyRemainder(c[pos+len(key):]); rest != "" {
			return rest, true
		}
		return nextNonEmpty(row, i+1), true
	}
	return "", false
}

// prefixValue is keyValue restricted to cells that begin with key, followed
// by a colon, whitespace, or nothing. Needed for short keys like "id" that
// appear as substrings of ordinary words.
func prefixValue(row []string, key string) (string, bool) {
	for i, c := range row {
		t := strings.TrimSpace(c)
		if !strings.HasPrefix(strings.ToLower(t), key) {
			continue
		}
		rest := t[len(key):]
		if rest != "" && rest[0] != ':' && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		if v := trimKeyRemainder(rest); v != "" {
			return v, true
		}
		return nextNonEmpty(row, i+1), true
	}
	return "", false
}

func trimKeyRemainder(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, ": \t"))
}

func nextNonEmpty(row []string, from int) string {
	for j := from; j < len(row); j++ {
		if v := strings.TrimSpace(row[j]); v != "" {
			return v
		}
	}
	return ""
}

// rowStartsWith reports whether the first non-empty cell begins with prefix.
func rowStartsWith(row []string, prefix string) bool {
	for _, c := range row {
		t := strings.TrimSpace(c)
		if t == "" {
			continue
		}
		return strings.HasPrefix(strings.ToLower(t), prefix)
	}
	return false
}

// flatten joins a row into one lowercased string for whole-row matching.
func flatten(row []string) string {
	return strings.ToLower(strings.Join(row, " "))
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
