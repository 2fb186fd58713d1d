// Package ingest reads billing export files from disk (or S3), dispatches
// them to the right parser, and merges the per-file results into one batch.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/delimited"
	"github.com/gyeh/claim-rates/internal/report"
)

// ErrNoData reports a batch from which no claims could be extracted. It is a
// user-visible condition distinct from a parse error.
var ErrNoData = errors.New("no valid data found in batch")

// Result holds the outcome of parsing a single input file.
type Result struct {
	Path   string
	Claims []claim.Claim
	Err    error
}

// ParseFile parses one input file by extension. Delimited text (.csv, .tsv,
// .txt, .tab, optionally .gz-compressed) goes through the delimited parser;
// .xlsx workbooks are decoded to a grid and go through the report parser.
func ParseFile(path, fallbackProvider string) ([]claim.Claim, error) {
	name := strings.ToLower(path)
	gzipped := strings.HasSuffix(name, ".gz")
	if gzipped {
		name = strings.TrimSuffix(name, ".gz")
	}

	switch filepath.Ext(name) {
	case ".csv", ".tsv", ".txt", ".tab":
		text, err := readText(path, gzipped)
		if err != nil {
			return nil, err
		}
		return delimited.Parse(text, fallbackProvider)
	case ".xlsx", ".xlsm":
		grid, err := report.LoadWorkbook(path)
		if err != nil {
			return nil, err
		}
		return report.Parse(grid, fallbackProvider)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

// readText reads a whole file as UTF-8 text, decompressing gzip and
// stripping any leading BOM.
func readText(path string, gzipped bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}

// Merge combines per-file results into a single batch with dense 1..N ids.
// A structural error in any file aborts the whole batch, reported against
// that file. An error-free batch with zero claims returns ErrNoData.
func Merge(results []Result) ([]claim.Claim, error) {
	lists := make([][]claim.Claim, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(r.Path), r.Err)
		}
		lists = append(lists, r.Claims)
	}

	merged := claim.Merge(lists...)
	if len(merged) == 0 {
		return nil, ErrNoData
	}
	return merged, nil
}
