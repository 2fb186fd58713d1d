// Package normalize converts raw cell text into typed values. Every function
// here is total: unparseable input maps to a zero value or an "unknown"
// marker, never an error. Billing exports are too inconsistent for anything
// stricter.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gyeh/claim-rates/internal/claim"
)

var (
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	usDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
)

// Fallback layouts tried when a date is neither ISO nor M/D/Y shaped.
var fallbackDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"01-02-2006",
	"2-Jan-2006",
	"2-Jan-06",
}

var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "")

// Money strips currency symbols, commas, and whitespace, and interprets
// accounting parenthesis notation as negative. Empty or unparseable input
// returns 0.
func Money(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = moneyReplacer.Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}

// Units parses a unit count, returning 0 for empty, unparseable, or negative
// input. Unit counts are never negative on a claim line.
func Units(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Date normalizes a date string to YYYY-MM-DD plus its epoch sort key.
// Accepts ISO YYYY-MM-DD, US M/D/YYYY and M/D/YY (two-digit years are
// 2000-based), then a handful of fallback layouts. Returns
// (claim.UnknownDate, 0) when nothing matches.
//
// Dates are constructed from calendar components in UTC so the day-of-month
// written in the file is preserved exactly.
func Date(s string) (string, int64) {
	s = strings.TrimSpace(s)
	if s == "" {
		return claim.UnknownDate, 0
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return buildDate(year, atoi(m[1]), atoi(m[2]))
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return buildDate(t.Year(), int(t.Month()), t.Day())
		}
	}
	return claim.UnknownDate, 0
}

// LooksLikeDate reports whether s is ISO- or M/D/Y-shaped. The visit-report
// parser uses this to tell data rows apart from context and filler rows.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	return isoDatePattern.MatchString(s) || usDatePattern.MatchString(s)
}

func buildDate(year, month, day int) (string, int64) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (month 13 rolls into the
	// next year); reject anything that moved.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return claim.UnknownDate, 0
	}
	return t.Format("2006-01-02"), t.Unix()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// payerAlias rewrites any payer string matching one of its substrings, or
// exactly one of its tokens, to a single canonical label. New payer families
// are added as new rules.
type payerAlias struct {
	substrings []string
	tokens     []string
	canonical  string
}

var payerAliases = []payerAlias{
	{
		substrings: []string{"UNITED HEALTH", "UNITEDHEALTH", "UHC"},
		tokens:     []string{"UNITED"},
		canonical:  "United Healthcare",
	},
}

// Payer canonicalizes a freely typed payer name. Known aliases collapse to
// one label; everything else passes through trimmed; empty input becomes the
// unknown-payer placeholder.
func Payer(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return claim.UnknownPayer
	}
	upper := strings.ToUpper(trimmed)
	for _, alias := range payerAliases {
		for _, sub := range alias.substrings {
			if strings.Contains(upper, sub) {
				return alias.canonical
			}
		}
		for _, tok := range alias.tokens {
			if hasToken(upper, tok) {
				return alias.canonical
			}
		}
	}
	return trimmed
}

func hasToken(s, token string) bool {
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	}) {
		if w == token {
			return true
		}
	}
	return false
}
