// Package summary aggregates normalized claims into the per-payer denial
// projections and per-patient encounter rollups the presentation layer
// renders.
package summary

import (
	"sort"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/rates"
)

// DenialStat aggregates unpaid claim lines for one payer.
type DenialStat struct {
	Payer          string  `json:"payer"`
	DeniedUnits    float64 `json:"denied_units"`
	DeniedCharges  float64 `json:"denied_charges"`
	ProjectedValue float64 `json:"projected_value"`
}

// Denials walks unpaid claims against the expected-rate table and projects
// recoverable revenue per payer. A line whose (payer, code) has no rate
// contributes 0 to the projection — never a fallback to billed charge.
// Results are sorted by projected value descending, payer ascending on ties.
func Denials(claims []claim.Claim, table rates.Table) []DenialStat {
	byPayer := make(map[string]*DenialStat)
	for _, c := range claims {
		if c.IsPaid {
			continue
		}
		stat, ok := byPayer[c.Payer]
		if !ok {
			stat = &DenialStat{Payer: c.Payer}
			byPayer[c.Payer] = stat
		}
		stat.DeniedUnits += c.Units
		stat.DeniedCharges += c.Charge
		if entry, ok := table.Lookup(c.Payer, c.ProcedureCode); ok {
			stat.ProjectedValue += c.Units * entry.ExpectedRate
		}
	}

	out := make([]DenialStat, 0, len(byPayer))
	for _, s := range byPayer {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectedValue != out[j].ProjectedValue {
			return out[i].ProjectedValue > out[j].ProjectedValue
		}
		return out[i].Payer < out[j].Payer
	})
	return out
}

// PatientStat is the per-patient encounter rollup.
type PatientStat struct {
	PatientID    string  `json:"patient_id"`
	PatientName  string  `json:"patient_name"`
	Payer        string  `json:"payer"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalVisits  int     `json:"total_visits"`
	LastVisit    string  `json:"last_visit,omitempty"`
}

// Patients deduplicates claims into per-patient summaries. A visit is a
// distinct (patient, service date) pair regardless of how many procedure
// lines share it; unknown dates pool into one bucket per patient. Payer is
// taken from the first claim seen for the patient — a documented
// simplification, not a true primary-payer determination. Results are sorted
// by revenue descending, patient id ascending on ties.
func Patients(claims []claim.Claim) []PatientStat {
	type patientAcc struct {
		stat   PatientStat
		visits map[string]struct{}
	}

	byID := make(map[string]*patientAcc)
	for _, c := range claims {
		acc, ok := byID[c.PatientID]
		if !ok {
			acc = &patientAcc{
				stat: PatientStat{
					PatientID:   c.PatientID,
					PatientName: c.PatientName,
					Payer:       c.Payer,
				},
				visits: make(map[string]struct{}),
			}
			byID[c.PatientID] = acc
		}
		acc.stat.TotalRevenue += c.Paid
		acc.visits[c.ServiceDate] = struct{}{}
		if c.ServiceDate != claim.UnknownDate && c.ServiceDate > acc.stat.LastVisit {
			acc.stat.LastVisit = c.ServiceDate
		}
	}

	out := make([]PatientStat, 0, len(byID))
	for _, acc := range byID {
		acc.stat.TotalVisits = len(acc.visits)
		out = append(out, acc.stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].PatientID < out[j].PatientID
	})
	return out
}
