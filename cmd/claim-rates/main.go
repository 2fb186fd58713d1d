package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/claim-rates/internal/claim"
	"github.com/gyeh/claim-rates/internal/export"
	"github.com/gyeh/claim-rates/internal/ingest"
	"github.com/gyeh/claim-rates/internal/output"
	"github.com/gyeh/claim-rates/internal/progress"
	"github.com/gyeh/claim-rates/internal/rates"
	"github.com/gyeh/claim-rates/internal/summary"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "claim-rates",
		Short: "Normalize medical billing exports and project recoverable revenue from denied claims",
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// batchFlags are the ingestion options shared by analyze and export.
type batchFlags struct {
	provider    string
	workers     int
	noProgress  bool
	logProgress bool
	s3Bucket    string
	s3Prefix    string
	s3Region    string
}

func (b *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.provider, "provider", "", "Fallback provider name for files that carry none")
	cmd.Flags().IntVar(&b.workers, "workers", 3, "Number of concurrent file parsers")
	cmd.Flags().BoolVar(&b.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&b.logProgress, "log-progress", false, "Line-based progress output for non-TTY environments")
	cmd.Flags().StringVar(&b.s3Bucket, "s3-bucket", "", "S3 bucket to fetch batch inputs from")
	cmd.Flags().StringVar(&b.s3Prefix, "s3-prefix", "", "S3 key prefix for batch inputs")
	cmd.Flags().StringVar(&b.s3Region, "s3-region", "us-east-1", "AWS region for --s3-bucket")
}

func (b *batchFlags) manager() progress.Manager {
	switch {
	case b.noProgress:
		return &progress.NoopManager{}
	case b.logProgress:
		return progress.NewLogManager()
	default:
		return progress.NewMPBManager()
	}
}

// loadBatch resolves inputs (local args plus optional S3 prefix), parses
// them concurrently, and merges the results into one batch.
func loadBatch(ctx context.Context, b *batchFlags, args []string) ([]claim.Claim, int, error) {
	paths := append([]string(nil), args...)

	if b.s3Bucket != "" {
		fetcher, err := ingest.NewS3Fetcher(ctx, b.s3Bucket, b.s3Region)
		if err != nil {
			return nil, 0, err
		}
		destDir, err := os.MkdirTemp("", "claim-rates-*")
		if err != nil {
			return nil, 0, fmt.Errorf("creating temp dir: %w", err)
		}
		fetched, err := fetcher.FetchPrefix(ctx, b.s3Prefix, destDir)
		if err != nil {
			return nil, 0, fmt.Errorf("fetching S3 inputs: %w", err)
		}
		paths = append(paths, fetched...)
	}

	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("no input files specified")
	}

	mgr := b.manager()
	pool := &ingest.Pool{
		Workers:  b.workers,
		Provider: b.provider,
		Progress: mgr,
	}
	results := pool.Run(ctx, paths)
	mgr.Wait()

	claims, err := ingest.Merge(results)
	return claims, len(paths), err
}

func newAnalyzeCmd() *cobra.Command {
	var (
		flags      batchFlags
		outputFile string
		csvFile    string
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Parse billing exports and emit expected rates, denial projections, and patient rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			startTime := time.Now()

			claims, fileCount, err := loadBatch(ctx, &flags, args)
			if errors.Is(err, ingest.ErrNoData) {
				fmt.Fprintln(os.Stderr, "No valid claim data found in the selected files.")
				return nil
			}
			if err != nil {
				return err
			}

			table := rates.Infer(claims)
			analysis := output.Analysis{
				Params: output.Params{
					Files:           fileCount,
					Claims:          len(claims),
					DurationSeconds: time.Since(startTime).Seconds(),
				},
				Rates:    output.FlattenRates(table),
				Denials:  summary.Denials(claims, table),
				Patients: summary.Patients(claims),
			}

			if err := output.WriteResults(outputFile, analysis); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if csvFile != "" {
				if err := writeClaimCSV(csvFile, claims); err != nil {
					return err
				}
			}

			var projected float64
			for _, d := range analysis.Denials {
				projected += d.ProjectedValue
			}
			fmt.Fprintf(os.Stderr, "\nAnalyzed %d claims from %d files in %.1fs: %d rate entries, %s projected from denials\n",
				len(claims), fileCount, analysis.Params.DurationSeconds, len(analysis.Rates), export.USD(projected))
			if outputFile != "-" {
				fmt.Fprintf(os.Stderr, "Results written to %s\n", outputFile)
			}

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "analysis.json", "Output file path (use '-' for stdout)")
	cmd.Flags().StringVar(&csvFile, "export-csv", "", "Also write the normalized claim list as CSV")

	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		flags      batchFlags
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "export [files...]",
		Short: "Parse billing exports and write the normalized claim list as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			claims, _, err := loadBatch(ctx, &flags, args)
			if errors.Is(err, ingest.ErrNoData) {
				fmt.Fprintln(os.Stderr, "No valid claim data found in the selected files.")
				return nil
			}
			if err != nil {
				return err
			}

			if err := writeClaimCSV(outputFile, claims); err != nil {
				return err
			}
			if outputFile != "-" {
				fmt.Fprintf(os.Stderr, "Wrote %d claims to %s\n", len(claims), outputFile)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "claims.csv", "Output CSV path (use '-' for stdout)")

	return cmd
}

func writeClaimCSV(path string, claims []claim.Claim) error {
	if path == "-" {
		return export.WriteClaims(os.Stdout, claims)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteClaims(f, claims); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()
	return ctx, cancel
}
