package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/validator"
)

// Validator produces exactly one result per domain
type Validator interface {
	Validate(ctx context.Context, domain string) models.ValidationResult
}

// StoreInterface is the minimal bbolt contract required by the orchestrator.
// Using an interface keeps the package testable without a real database.
type StoreInterface interface {
	SaveRun(meta *models.RunMeta) error
	SaveResults(runID string, results []models.ValidationResult) error
	UpdateRunStatus(id string, status models.RunStatus) error
}

// BatchConfig controls a single RunBatch call.
type BatchConfig struct {
	// Concurrency bounds how many domains are validated at once. Must be > 0.
	Concurrency int

	// RateLimit caps task dispatch in domains per second. Zero means unlimited.
	RateLimit float64

	// OnResult is called once per completed domain, serialized. index is the
	// 1-based completion position; total is the batch size.
	OnResult func(res models.ValidationResult, index, total int)

	Logger logger.Logger
}

// BatchResult is the outcome of RunBatch.
type BatchResult struct {
	// Results holds one entry per input domain, in completion order.
	Results []models.ValidationResult
	Summary models.BatchSummary
	Elapsed time.Duration
}

// RunBatch validates every domain on a bounded worker pool. Each input yields
// exactly one result: a panicking task or a cancelled dispatch becomes an
// Invalid result rather than a missing one.
func RunBatch(ctx context.Context, domains []string, v Validator, cfg BatchConfig) (*BatchResult, error) {
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("pipeline: concurrency must be positive, got %d", cfg.Concurrency)
	}
	if v == nil {
		return nil, errors.New("pipeline: validator must not be nil")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	total := len(domains)
	results := make([]models.ValidationResult, 0, total)
	var mu sync.Mutex

	emit := func(res models.ValidationResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		if cfg.OnResult != nil {
			cfg.OnResult(res, len(results), total)
		}
	}

	start := time.Now()
	p := pool.New().WithMaxGoroutines(cfg.Concurrency)

	for _, domain := range domains {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				log.Warn("dispatch cancelled", logger.String("domain", domain), logger.Error(err))
				emit(models.InvalidResult(models.NormalizeDomain(domain), validator.ReasonErrorPrefix+err.Error()))
				continue
			}
		}

		p.Go(func() {
			emit(runTaskIsolated(ctx, v, domain, log))
		})
	}
	p.Wait()

	return &BatchResult{
		Results: results,
		Summary: models.Summarize(results),
		Elapsed: time.Since(start),
	}, nil
}

// runTaskIsolated validates one domain inside a deferred recover so a panic
// in validator code becomes an Invalid result instead of crashing the pool.
// Tasks dispatched after ctx is done are not validated at all.
func runTaskIsolated(ctx context.Context, v Validator, domain string, log logger.Logger) (res models.ValidationResult) {
	if err := ctx.Err(); err != nil {
		return models.InvalidResult(models.NormalizeDomain(domain), validator.ReasonErrorPrefix+err.Error())
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", logger.String("domain", domain), logger.Any("panic", r))
			res = models.InvalidResult(models.NormalizeDomain(domain), fmt.Sprintf("%s%v", validator.ReasonErrorPrefix, r))
		}
	}()
	return v.Validate(ctx, domain)
}

// Reporter pairs a report name with the function that writes it.
type Reporter struct {
	Name  string
	Write func(results []models.ValidationResult, summary models.BatchSummary, at time.Time) (string, error)
}

// RunConfig controls how RunPipeline behaves for a single run.
type RunConfig struct {
	// InputFile names where the domains came from; it keys the run history.
	InputFile string
	Profile   string
	Domains   []string
	Batch     BatchConfig

	// Reporters run after the batch. A failing reporter is a warning.
	Reporters []Reporter

	Notify *NotifyConfig

	// Out receives the [*] / [!] progress lines. Nil means stdout.
	Out io.Writer
}

// RunResult summarises what happened after RunPipeline returns.
type RunResult struct {
	RunID string

	Batch *BatchResult

	// ReportPaths lists the files written by reporters that succeeded.
	ReportPaths []string

	// ReportErrors maps reporter name to error message for every failure.
	ReportErrors map[string]string

	Status models.RunStatus
}

// RunPipeline runs a full batch: it records the run (when store is non-nil),
// validates every domain, writes reports, persists results and fires the
// completion webhook. Only setup failures are returned as errors; reporter,
// history and webhook failures are printed as warnings.
func RunPipeline(ctx context.Context, cfg RunConfig, v Validator, store StoreInterface) (*RunResult, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	// ── 1. Create the run record ──────────────────────────────────────────────
	meta := models.NewRun(cfg.InputFile, cfg.Profile, cfg.Batch.Concurrency)
	if store != nil {
		if err := store.SaveRun(meta); err != nil {
			return nil, fmt.Errorf("pipeline: saving initial run record: %w", err)
		}
		fmt.Fprintf(out, "[*] Run ID: %s\n", meta.ID)
	}

	// ── 2. Validate ───────────────────────────────────────────────────────────
	batch, err := RunBatch(ctx, cfg.Domains, v, cfg.Batch)
	if err != nil {
		if store != nil {
			if uerr := store.UpdateRunStatus(meta.ID, models.StatusFailed); uerr != nil {
				fmt.Fprintf(out, "[!] Warning: could not update run status: %v\n", uerr)
			}
		}
		return nil, err
	}

	result := &RunResult{
		RunID:        meta.ID,
		Batch:        batch,
		ReportErrors: make(map[string]string),
		Status:       models.StatusComplete,
	}
	if err := ctx.Err(); err != nil {
		result.Status = models.StatusFailed
		fmt.Fprintf(out, "[!] Warning: run interrupted, remaining domains not validated: %v\n", err)
	}

	// ── 3. Reports ────────────────────────────────────────────────────────────
	for _, r := range cfg.Reporters {
		path, err := r.Write(batch.Results, batch.Summary, meta.StartedAt)
		if err != nil {
			result.ReportErrors[r.Name] = err.Error()
			fmt.Fprintf(out, "[!] Warning: %s report failed: %v\n", r.Name, err)
			continue
		}
		result.ReportPaths = append(result.ReportPaths, path)
		fmt.Fprintf(out, "[+] Results saved to %s\n", path)
	}

	// ── 4. Persist ────────────────────────────────────────────────────────────
	if store != nil {
		now := time.Now()
		meta.CompletedAt = &now
		meta.Status = result.Status
		meta.Summary = batch.Summary
		meta.ReportPaths = append(meta.ReportPaths, result.ReportPaths...)

		if err := store.SaveResults(meta.ID, batch.Results); err != nil {
			fmt.Fprintf(out, "[!] Warning: could not persist results: %v\n", err)
		}
		if err := store.SaveRun(meta); err != nil {
			fmt.Fprintf(out, "[!] Warning: could not update run record: %v\n", err)
		}
	}

	// ── 5. Notify ─────────────────────────────────────────────────────────────
	if err := cfg.Notify.SendCompletion(meta, result); err != nil {
		fmt.Fprintf(out, "[!] Warning: webhook notification failed: %v\n", err)
	}

	return result, nil
}
