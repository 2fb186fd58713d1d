package ingest

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/progress"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParseFile_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.csv",
		"cpt,payment\n99213,45.00\n")

	claims, err := ParseFile(path, "Dr. A")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(claims) != 1 || claims[0].ProcedureCode != "99213" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseFile_GzippedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte("cpt,payment\n99213,45.00\n")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	claims, err := ParseFile(path, "")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(claims) != 1 || claims[0].Paid != 45 {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseFile_BOMStripped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bom.csv",
		"\uFEFFcpt,payment\n99213,45.00\n")

	claims, err := ParseFile(path, "")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("BOM should not break header resolution: %+v", claims)
	}
}

func TestParseFile_UnsupportedType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.pdf", "%PDF-1.4")

	_, err := ParseFile(path, "")
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("expected unsupported file type error, got: %v", err)
	}
}

func TestMerge_RenumbersAcrossFiles(t *testing.T) {
	results := []Result{
		{Path: "a.csv", Claims: []claim.Claim{{ID: 1}, {ID: 2}}},
		{Path: "b.csv", Claims: []claim.Claim{{ID: 1}}},
	}

	merged, err := Merge(results)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 claims, got %d", len(merged))
	}
	for i, c := range merged {
		if c.ID != i+1 {
			t.Errorf("claim %d has id %d, want %d", i, c.ID, i+1)
		}
	}
}

func TestMerge_ErrorReferencesFile(t *testing.T) {
	results := []Result{
		{Path: "/tmp/good.csv", Claims: []claim.Claim{{ID: 1}}},
		{Path: "/tmp/bad.csv", Err: errors.New("required procedure code column not found")},
	}

	_, err := Merge(results)
	if err == nil {
		t.Fatal("expected merge to fail")
	}
	if !strings.Contains(err.Error(), "bad.csv") {
		t.Errorf("error should reference the failing file, got: %v", err)
	}
}

func TestMerge_EmptyBatch(t *testing.T) {
	_, err := Merge([]Result{{Path: "a.csv"}, {Path: "b.csv"}})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got: %v", err)
	}
}

func TestPool_Run(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "cpt,payment\n99213,45.00\n")
	b := writeFile(t, dir, "b.csv", "cpt,payment\nA4550,0\n99214,30.00\n")

	pool := &Pool{Workers: 2, Provider: "Dr. A", Progress: &progress.NoopManager{}}
	results := pool.Run(context.Background(), []string{a, b})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", results[0].Err, results[1].Err)
	}
	if len(results[0].Claims) != 1 || len(results[1].Claims) != 2 {
		t.Errorf("unexpected claim counts: %d, %d", len(results[0].Claims), len(results[1].Claims))
	}

	merged, err := Merge(results)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged) != 3 {
		t.Errorf("expected 3 merged claims, got %d", len(merged))
	}
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := &Pool{Workers: 0, Provider: "", Progress: &progress.NoopManager{}}
	results := pool.Run(ctx, []string{"never-read.csv"})

	if results[0].Err == nil {
		t.Error("expected context error for cancelled run")
	}
}
