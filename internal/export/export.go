// Package export renders normalized claims for external consumers: the CSV
// claim listing and USD display formatting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gyeh/claim-rates/internal/claim"
)

// ClaimHeader is the column set of the exported claim CSV. Every name
// resolves back through the header alias table, so an exported file reparses
// cleanly.
var ClaimHeader = []string{
	"id", "provider", "procedure_code", "code_class", "units",
	"charge", "paid", "status", "patient_id", "patient_name",
	"payer", "date_of_service",
}

// WriteClaims writes claims as CSV. Money renders with two decimals, unknown
// service dates as empty strings, and payment status as "Paid"/"Unpaid".
// Fields containing commas, quotes, or newlines are quoted with embedded
// quotes doubled.
func WriteClaims(w io.Writer, claims []claim.Claim) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ClaimHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, c := range claims {
		date := c.ServiceDate
		if date == claim.UnknownDate {
			date = ""
		}
		status := "Unpaid"
		if c.IsPaid {
			status = "Paid"
		}
		record := []string{
			strconv.Itoa(c.ID),
			c.Provider,
			c.ProcedureCode,
			string(c.CodeClass),
			strconv.FormatFloat(c.Units, 'f', -1, 64),
			strconv.FormatFloat(c.Charge, 'f', 2, 64),
			strconv.FormatFloat(c.Paid, 'f', 2, 64),
			status,
			c.PatientID,
			c.PatientName,
			c.Payer,
			date,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing claim %d: %w", c.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// USD formats an amount with the conventional dollar sign and thousands
// grouping, e.g. 1234.5 → "$1,234.50". Rendering only; no rounding semantics
// beyond display.
func USD(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}

	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, grouped.String(), cents%100)
}
