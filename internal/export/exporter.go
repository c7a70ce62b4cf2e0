package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"alloia/internal/logger"
	"alloia/internal/queue"
)

// backgroundDelay is how far in the future a scheduled export runs.
const backgroundDelay = 60 * time.Second

// Exporter drives the whole pipeline: pre-flight validation, extract,
// transform, validate, then immediate submission or a scheduled
// background run. One export at a time per process; concurrent
// attempts get ErrExportInProgress instead of double-counting the
// ledger.
type Exporter struct {
	gateway     Gateway
	extractor   *Extractor
	transformer *Transformer
	submitter   *Submitter
	runs        *RunStore
	scheduler   queue.Scheduler
	log         *logger.Logger

	mu sync.Mutex
}

func NewExporter(gateway Gateway, extractor *Extractor, transformer *Transformer, submitter *Submitter, runs *RunStore, scheduler queue.Scheduler, log *logger.Logger) *Exporter {
	return &Exporter{
		gateway:     gateway,
		extractor:   extractor,
		transformer: transformer,
		submitter:   submitter,
		runs:        runs,
		scheduler:   scheduler,
		log:         log,
	}
}

// ExportProducts runs a full export. The domain/key pre-flight happens
// before any catalog read; a failure there aborts with a translated
// error and nothing is extracted. An empty extraction is a successful
// no-op. With background set, the run is persisted as pending and
// scheduled instead of submitted inline.
func (e *Exporter) ExportProducts(ctx context.Context, filters Filters, background bool) (*Result, error) {
	if !e.mu.TryLock() {
		return nil, ErrExportInProgress
	}
	defer e.mu.Unlock()

	if err := e.preflight(ctx); err != nil {
		return nil, err
	}

	products, err := e.extractor.Extract(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("catalog extraction failed: %w", err)
	}
	if len(products) == 0 {
		return &Result{
			Success: true,
			Message: "No products found to export",
		}, nil
	}

	payload := e.transformer.Transform(products)

	if validation := ValidatePayload(payload); !validation.Valid {
		return nil, fmt.Errorf("export data validation failed: %s", strings.Join(validation.Errors, ", "))
	}

	if background {
		run, err := e.runs.Create(ctx, filters, len(payload.Nodes))
		if err != nil {
			return nil, fmt.Errorf("failed to persist background run: %w", err)
		}
		task := queue.Task{Type: queue.TaskBackgroundExport, ExportID: run.ID}
		if err := e.scheduler.Schedule(ctx, backgroundDelay, task); err != nil {
			return nil, fmt.Errorf("failed to schedule background export: %w", err)
		}
		e.log.Info("Scheduled background export %s (%d products)", run.ID, run.TotalCount)
		return &Result{
			Success:    true,
			ExportID:   run.ID,
			TotalCount: run.TotalCount,
			Message:    "Export scheduled for background processing",
		}, nil
	}

	e.log.Info("Exporting %d products in batches", len(payload.Nodes))
	return e.submitter.Submit(ctx, payload)
}

// RunBackground executes a previously scheduled run: pending becomes
// processing, then completed or failed. The catalog is re-read with the
// persisted filters so the submission reflects the store at execution
// time.
func (e *Exporter) RunBackground(ctx context.Context, exportID string) error {
	run, err := e.runs.Get(ctx, exportID)
	if err != nil {
		return err
	}

	run.Status = RunStatusProcessing
	if err := e.runs.Save(ctx, run); err != nil {
		return err
	}

	result, err := e.runExport(ctx, run.Filters)
	now := time.Now().UTC()
	if err != nil {
		run.Status = RunStatusFailed
		run.Errors = append(run.Errors, err.Error())
		run.CompletedAt = now
		if serr := e.runs.Save(ctx, run); serr != nil {
			e.log.Error("Failed to persist failed run %s: %v", run.ID, serr)
		}
		return err
	}

	run.Status = RunStatusCompleted
	run.TotalCount = result.TotalCount
	run.ProcessedCount = result.TotalCount
	run.ExportedCount = result.ExportedCount
	run.FailedCount = result.FailedCount
	run.Errors = append(run.Errors, result.Errors...)
	run.CompletedAt = now
	return e.runs.Save(ctx, run)
}

// ExportStatus resolves a background run's state. Synchronous runs are
// not tracked and report ErrRunNotFound.
func (e *Exporter) ExportStatus(ctx context.Context, exportID string) (*Run, error) {
	return e.runs.Get(ctx, exportID)
}

// runExport is the shared extract-transform-validate-submit path used
// by background runs, guarded by the same single-flight lock.
func (e *Exporter) runExport(ctx context.Context, filters Filters) (*Result, error) {
	if !e.mu.TryLock() {
		return nil, ErrExportInProgress
	}
	defer e.mu.Unlock()

	if err := e.preflight(ctx); err != nil {
		return nil, err
	}

	products, err := e.extractor.Extract(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("catalog extraction failed: %w", err)
	}
	if len(products) == 0 {
		return &Result{Success: true, Message: "No products found to export"}, nil
	}

	payload := e.transformer.Transform(products)
	if validation := ValidatePayload(payload); !validation.Valid {
		return nil, fmt.Errorf("export data validation failed: %s", strings.Join(validation.Errors, ", "))
	}

	return e.submitter.Submit(ctx, payload)
}

// preflight validates the API key and domain association before any
// catalog work happens.
func (e *Exporter) preflight(ctx context.Context) error {
	validation, err := e.gateway.ValidateDomainForSync(ctx, "")
	if err != nil {
		return fmt.Errorf("domain validation failed: %w", err)
	}
	if !validation.Valid {
		message := validation.Error
		if message == "" {
			message = "Domain validation failed"
		}
		return errors.New(TranslatePreflightError(message))
	}
	return nil
}
