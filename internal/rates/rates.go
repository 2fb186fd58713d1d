// Package rates infers the per-unit amount each payer is historically
// observed to pay for a procedure code. The inferred rate is what a denied
// line of the same (payer, code) should have been worth.
package rates

import (
	"math"

	"github.com/gyeh/claim-rates/internal/claim"
)

// Method identifies which statistic produced an expected rate.
type Method string

const (
	MethodMode Method = "mode"
	MethodMax  Method = "max"
	MethodNone Method = "none"
)

// Entry is the expected rate for one (payer, procedure code) pair.
type Entry struct {
	ExpectedRate float64 `json:"expected_rate"`
	Method       Method  `json:"method"`
	Frequency    int     `json:"frequency"`
}

// Table maps payer → procedure code → expected-rate entry. Pairs with no
// qualifying paid history are absent.
type Table map[string]map[string]Entry

// Lookup returns the entry for a (payer, code) pair, or a zero entry with
// MethodNone when no paid history exists.
func (t Table) Lookup(payer, code string) (Entry, bool) {
	if e, ok := t[payer][code]; ok {
		return e, true
	}
	return Entry{Method: MethodNone}, false
}

// Infer builds the expected-rate table from the paid subset of claims. Unit
// prices are rounded to two decimals before grouping — the rounding is the
// grouping key, so payments within a cent of each other count as the same
// rate. Groups with more than two distinct rates take the mode (ties broken
// toward the higher rate); smaller groups take the maximum. Frequency always
// records the mode computation's winning count.
//
// Deterministic for a given claim set: selection depends only on the
// histogram, never on iteration order.
func Infer(claims []claim.Claim) Table {
	hist := make(map[string]map[string]map[float64]int)
	for _, c := range claims {
		if !c.IsPaid || c.Paid <= 0 || c.Units <= 0 {
			continue
		}
		rate := math.Round(c.Paid/c.Units*100) / 100
		byCode, ok := hist[c.Payer]
		if !ok {
			byCode = make(map[string]map[float64]int)
			hist[c.Payer] = byCode
		}
		if byCode[c.ProcedureCode] == nil {
			byCode[c.ProcedureCode] = make(map[float64]int)
		}
		byCode[c.ProcedureCode][rate]++
	}

	table := make(Table, len(hist))
	for payer, byCode := range hist {
		entries := make(map[string]Entry, len(byCode))
		for code, freq := range byCode {
			entries[code] = selectRate(freq)
		}
		table[payer] = entries
	}
	return table
}

func selectRate(freq map[float64]int) Entry {
	var (
		maxRate  float64
		modeRate float64
		modeFreq int
	)
	for rate, count := range freq {
		if rate > maxRate {
			maxRate = rate
		}
		if count > modeFreq || (count == modeFreq && rate > modeRate) {
			modeRate = rate
			modeFreq = count
		}
	}

	if len(freq) > 2 {
		return Entry{ExpectedRate: modeRate, Method: MethodMode, Frequency: modeFreq}
	}
	// With two or fewer distinct rates the mode is not meaningful; take the
	// maximum. Frequency still carries the mode count.
	return Entry{ExpectedRate: maxRate, Method: MethodMax, Frequency: modeFreq}
}
