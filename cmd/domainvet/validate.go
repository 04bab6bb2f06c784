package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/config"
	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/pipeline"
	"github.com/hakim/domainvet/internal/report"
	"github.com/hakim/domainvet/internal/storage"
)

// runValidate is the RunE handler for the root command.
func runValidate(cmd *cobra.Command, args []string) error {
	// Arguments were accepted; further failures are not usage errors.
	cmd.SilenceUsage = true

	// ── 1. Arguments ──────────────────────────────────────────────────────────
	inputFile := args[0]
	workers := cfg.Workers
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("max-workers must be a positive integer, got %q", args[1])
		}
		workers = n
	}

	// ── 2. Load the domain list ───────────────────────────────────────────────
	domains, err := storage.ReadDomainList(inputFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("File '%s' not found.", inputFile)
		}
		return err
	}
	fmt.Printf("Loaded %d domains from %s\n", len(domains), inputFile)

	if err := storage.EnsureDir(cfg.OutputDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// ── 3. Build the engine ───────────────────────────────────────────────────
	components, err := pipeline.Build(cfg, appLog)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Profile: %s (%s)\n", components.Profile.Name, components.Profile.Description)
	fmt.Printf("[*] Validating with %d workers\n\n", workers)

	// ── 4. Open history (non-fatal) ───────────────────────────────────────────
	var store pipeline.StoreInterface
	if s, err := openStore(); err != nil {
		fmt.Printf("[!] Warning: run history disabled: %v\n", err)
	} else if s != nil {
		defer s.Close()
		store = s
	}

	// ── 5. Run ────────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.RunPipeline(ctx, pipeline.RunConfig{
		InputFile: inputFile,
		Profile:   components.Profile.Name,
		Domains:   domains,
		Batch: pipeline.BatchConfig{
			Concurrency: workers,
			RateLimit:   cfg.RateLimit,
			OnResult: func(res models.ValidationResult, index, total int) {
				report.PrintProgress(os.Stdout, res, index, total)
			},
			Logger: appLog,
		},
		Reporters: buildReporters(cfg),
		Notify:    &pipeline.NotifyConfig{WebhookURL: cfg.Notify.WebhookURL},
		Out:       os.Stdout,
	}, components.Engine, store)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// ── 6. Summary ────────────────────────────────────────────────────────────
	report.PrintSummary(os.Stdout, result.Batch.Summary, result.Batch.Elapsed)

	return nil
}

// buildReporters returns the file reporters selected by report_format.
func buildReporters(c *config.Config) []pipeline.Reporter {
	csvReporter := pipeline.Reporter{
		Name: "csv",
		Write: func(results []models.ValidationResult, _ models.BatchSummary, at time.Time) (string, error) {
			path := storage.ReportPath(c.OutputDir, "csv", at)
			return path, report.WriteCSVFile(results, path)
		},
	}
	xlsxReporter := pipeline.Reporter{
		Name: "xlsx",
		Write: func(results []models.ValidationResult, summary models.BatchSummary, at time.Time) (string, error) {
			path := storage.ReportPath(c.OutputDir, "xlsx", at)
			return path, report.WriteXLSXFile(results, summary, path)
		},
	}

	switch c.ReportFormat {
	case "xlsx":
		return []pipeline.Reporter{xlsxReporter}
	case "both":
		return []pipeline.Reporter{csvReporter, xlsxReporter}
	default:
		return []pipeline.Reporter{csvReporter}
	}
}
