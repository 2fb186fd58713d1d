// Package output writes the analysis summary JSON consumed by the dashboard
// and other downstream tooling.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gyeh/claim-rates/internal/rates"
	"github.com/gyeh/claim-rates/internal/summary"
)

// Params holds metadata about the analyzed batch.
type Params struct {
	Files           int     `json:"files"`
	Claims          int     `json:"claims"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RateRow is one flattened expected-rate table entry.
type RateRow struct {
	Payer         string       `json:"payer"`
	ProcedureCode string       `json:"procedure_code"`
	ExpectedRate  float64      `json:"expected_rate"`
	Method        rates.Method `json:"method"`
	Frequency     int          `json:"frequency"`
}

// Analysis is the top-level output JSON structure.
type Analysis struct {
	Params   Params                `json:"params"`
	Rates    []RateRow             `json:"rates"`
	Denials  []summary.DenialStat  `json:"denials"`
	Patients []summary.PatientStat `json:"patients"`
}

// FlattenRates converts the rate table to rows sorted by payer then code, so
// output is byte-identical across runs on the same batch.
func FlattenRates(table rates.Table) []RateRow {
	rows := make([]RateRow, 0, len(table))
	for payer, byCode := range table {
		for code, entry := range byCode {
			rows = append(rows, RateRow{
				Payer:         payer,
				ProcedureCode: code,
				ExpectedRate:  entry.ExpectedRate,
				Method:        entry.Method,
				Frequency:     entry.Frequency,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Payer != rows[j].Payer {
			return rows[i].Payer < rows[j].Payer
		}
		return rows[i].ProcedureCode < rows[j].ProcedureCode
	})
	return rows
}

// WriteResults writes the analysis JSON to the specified file, or stdout
// when outputPath is "-".
func WriteResults(outputPath string, analysis Analysis) error {
	if analysis.Rates == nil {
		analysis.Rates = []RateRow{}
	}
	if analysis.Denials == nil {
		analysis.Denials = []summary.DenialStat{}
	}
	if analysis.Patients == nil {
		analysis.Patients = []summary.PatientStat{}
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		fmt.Fprintln(os.Stdout)
		return err
	}

	return os.WriteFile(outputPath, data, 0o644)
}
