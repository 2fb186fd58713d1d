package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gyeh/claim-rates/internal/progress"
)

// Pool parses input files concurrently. Each file is an independent parse
// over its own buffer, so fan-out needs no shared state beyond the result
// slot per file.
type Pool struct {
	Workers  int
	Provider string // fallback provider for files that carry none
	Progress progress.Manager
}

// Run parses all paths and returns one Result per path, index-aligned.
func (p *Pool) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	sem := make(chan struct{}, p.Workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx] = Result{Path: path, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			tracker := p.Progress.NewTracker(idx, len(paths), filepath.Base(path))
			tracker.SetStage("Parsing")

			claims, err := ParseFile(path, p.Provider)
			results[idx] = Result{Path: path, Claims: claims, Err: err}

			if err != nil {
				tracker.SetStage("Failed")
			} else {
				tracker.SetStage(fmt.Sprintf("Done (%d claims)", len(claims)))
			}
			tracker.Done()
		}(i, path)
	}

	wg.Wait()
	return results
}
