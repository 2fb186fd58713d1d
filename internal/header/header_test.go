package header

import "testing"

func TestResolve_FirstCandidateWins(t *testing.T) {
	// Both "cpt" and "procedure code" present: "cpt" is the earlier
	// candidate and must win even though it appears later in the row.
	cols := Resolve([]string{"procedure code", "cpt"})
	if got := cols[FieldCode]; got != 1 {
		t.Errorf("code column = %d, want 1 (cpt outranks procedure code)", got)
	}
}

func TestResolve_CaseAndWhitespace(t *testing.T) {
	cols := Resolve([]string{"  CPT ", "Date_Of_Service", "INSURANCE"})
	if got, ok := cols[FieldCode]; !ok || got != 0 {
		t.Errorf("code column = %d/%v, want 0", got, ok)
	}
	if got, ok := cols[FieldServiceDate]; !ok || got != 1 {
		t.Errorf("service date column = %d/%v, want 1", got, ok)
	}
	if got, ok := cols[FieldPayer]; !ok || got != 2 {
		t.Errorf("payer column = %d/%v, want 2", got, ok)
	}
}

func TestResolve_AbsentFieldMissing(t *testing.T) {
	cols := Resolve([]string{"cpt"})
	if _, ok := cols[FieldUnits]; ok {
		t.Error("units should be absent from a cpt-only header")
	}
}

func TestResolveLoose_Substring(t *testing.T) {
	cols := ResolveLoose([]string{"Date of Service:", "CPT Code", "Applied Payments ($)"})
	if got, ok := cols[FieldServiceDate]; !ok || got != 0 {
		t.Errorf("service date column = %d/%v, want 0", got, ok)
	}
	if got, ok := cols[FieldAppliedPayments]; !ok || got != 2 {
		t.Errorf("applied payments column = %d/%v, want 2", got, ok)
	}
	if got, ok := cols[FieldCode]; !ok || got != 1 {
		t.Errorf("code column = %d/%v, want 1", got, ok)
	}
}
