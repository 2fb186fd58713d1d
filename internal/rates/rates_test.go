package rates

import (
	"reflect"
	"testing"

	"github.com/gyeh/claim-rates/internal/claim"
)

func paidClaim(payer, code string, units, paid float64) claim.Claim {
	return claim.Claim{
		Payer:         payer,
		ProcedureCode: code,
		Units:         units,
		Paid:          paid,
		IsPaid:        paid > claim.PaidThreshold,
	}
}

func TestInfer_ModeTieBreakPicksHigherRate(t *testing.T) {
	// Unit rates: 10 ×3, 20 ×3, 30 ×1. Three distinct values → mode; the
	// frequency tie between 10 and 20 breaks toward the higher rate.
	var claims []claim.Claim
	for _, rate := range []float64{10, 10, 10, 20, 20, 20, 30} {
		claims = append(claims, paidClaim("Aetna", "99213", 1, rate))
	}

	entry, ok := Infer(claims).Lookup("Aetna", "99213")
	if !ok {
		t.Fatal("expected an entry for Aetna/99213")
	}
	if entry.Method != MethodMode {
		t.Errorf("method = %q, want %q", entry.Method, MethodMode)
	}
	if entry.ExpectedRate != 20 {
		t.Errorf("expected rate = %v, want 20", entry.ExpectedRate)
	}
	if entry.Frequency != 3 {
		t.Errorf("frequency = %d, want 3", entry.Frequency)
	}
}

func TestInfer_MaxFallbackForTwoDistinctRates(t *testing.T) {
	claims := []claim.Claim{
		paidClaim("Aetna", "99213", 1, 10),
		paidClaim("Aetna", "99213", 1, 50),
	}

	entry, ok := Infer(claims).Lookup("Aetna", "99213")
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.Method != MethodMax {
		t.Errorf("method = %q, want %q", entry.Method, MethodMax)
	}
	if entry.ExpectedRate != 50 {
		t.Errorf("expected rate = %v, want 50", entry.ExpectedRate)
	}
}

func TestInfer_MaxFrequencyStillReflectsMode(t *testing.T) {
	// Two distinct rates → max rule, but frequency carries the mode count
	// (2 occurrences of 10), not the max rate's own count.
	claims := []claim.Claim{
		paidClaim("Aetna", "99213", 1, 10),
		paidClaim("Aetna", "99213", 1, 10),
		paidClaim("Aetna", "99213", 1, 50),
	}

	entry, _ := Infer(claims).Lookup("Aetna", "99213")
	if entry.Method != MethodMax || entry.ExpectedRate != 50 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Frequency != 2 {
		t.Errorf("frequency = %d, want mode count 2", entry.Frequency)
	}
}

func TestInfer_RoundingIsGroupingKey(t *testing.T) {
	// 33.333... and 33.33 round to the same two-decimal rate and must group.
	claims := []claim.Claim{
		paidClaim("Aetna", "99213", 3, 100), // 33.33
		paidClaim("Aetna", "99213", 1, 33.33),
		paidClaim("Aetna", "99213", 1, 50),
	}

	entry, _ := Infer(claims).Lookup("Aetna", "99213")
	if entry.Method != MethodMax {
		t.Errorf("two distinct rounded rates should use max, got %q", entry.Method)
	}
	if entry.Frequency != 2 {
		t.Errorf("frequency = %d, want 2 (grouped by rounded rate)", entry.Frequency)
	}
}

func TestInfer_OnlyQualifyingClaimsContribute(t *testing.T) {
	claims := []claim.Claim{
		{Payer: "Aetna", ProcedureCode: "99213", Units: 0, Paid: 100, IsPaid: true}, // zero units
		{Payer: "Aetna", ProcedureCode: "99213", Units: 1, Paid: 0, IsPaid: false},  // unpaid
	}

	table := Infer(claims)
	if _, ok := table.Lookup("Aetna", "99213"); ok {
		t.Error("expected no entry when no claim qualifies")
	}
}

func TestLookup_AbsentPairReturnsNone(t *testing.T) {
	entry, ok := Infer(nil).Lookup("Nobody", "00000")
	if ok {
		t.Error("expected ok=false for absent pair")
	}
	if entry.Method != MethodNone || entry.ExpectedRate != 0 {
		t.Errorf("absent entry = %+v, want zero entry with MethodNone", entry)
	}
}

func TestInfer_Idempotent(t *testing.T) {
	claims := []claim.Claim{
		paidClaim("Aetna", "99213", 1, 10),
		paidClaim("Aetna", "99213", 2, 40),
		paidClaim("Cigna", "A4550", 1, 12.5),
		paidClaim("Cigna", "A4550", 1, 15),
		paidClaim("Cigna", "A4550", 1, 15),
	}

	first := Infer(claims)
	second := Infer(claims)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Infer is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
