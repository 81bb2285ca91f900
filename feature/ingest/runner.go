package ingest

import (
	"context"
	"errors"
	"sync"

	"refdata-manager/core/logger"
	"refdata-manager/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconciler runs one record through the resolution engine.
type Reconciler interface {
	Reconcile(ctx context.Context, record reconcile.IncomingRecord) (*reconcile.Result, error)
}

// RecordError captures why one record of a batch did not emit.
type RecordError struct {
	// ExternalID is the vendor's key for the record.
	ExternalID string `json:"external_id"`

	// Fields holds per-field validation errors for rejected records.
	Fields []reconcile.FieldError `json:"fields,omitempty"`

	// Error is the error message for missing-dependency and
	// infrastructure failures.
	Error string `json:"error,omitempty"`
}

// BatchSummary aggregates the outcome of one vendor batch.
type BatchSummary struct {
	BatchID   string         `json:"batch_id"`
	Source    string         `json:"source"`
	Kind      reconcile.Kind `json:"kind"`
	Processed int            `json:"processed"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`

	// Rejected counts records that failed validation. They are final:
	// resubmitting the same data rejects again.
	Rejected int `json:"rejected"`

	// Missing counts records whose referenced entities (constituents) do
	// not exist yet. They are retryable once the dependency arrives.
	Missing int `json:"missing"`

	// Failed counts infrastructure failures (database, publication).
	Failed int `json:"failed"`

	Errors []RecordError `json:"errors,omitempty"`
}

// Runner fans a batch of records out over a bounded worker pool. Records
// resolving to the same entity are serialized by the engine's keyed locks, so
// workers never race on a shared entity.
type Runner struct {
	engine  Reconciler
	workers int
	logger  *zap.Logger
}

// NewRunner creates a runner reconciling up to workers records in parallel.
func NewRunner(engine Reconciler, workers int, log *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{engine: engine, workers: workers, logger: log}
}

// Run reconciles every record of one batch and returns the aggregate
// summary. Individual record failures never abort the batch.
func (r *Runner) Run(ctx context.Context, kind reconcile.Kind, source string, records []reconcile.IncomingRecord) *BatchSummary {
	batchID := uuid.NewString()
	l := logger.WithBatch(r.logger, batchID, source)

	summary := &BatchSummary{
		BatchID:   batchID,
		Source:    source,
		Kind:      kind,
		Processed: len(records),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, record := range records {
		record := record
		if record.Kind == "" {
			record.Kind = kind
		}
		if record.Source == "" {
			record.Source = source
		}

		g.Go(func() error {
			result, err := r.engine.Reconcile(gctx, record)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && errors.Is(err, reconcile.ErrNotFound):
				summary.Missing++
				summary.Errors = append(summary.Errors, RecordError{
					ExternalID: record.ExternalID,
					Error:      err.Error(),
				})
			case err != nil:
				summary.Failed++
				summary.Errors = append(summary.Errors, RecordError{
					ExternalID: record.ExternalID,
					Error:      err.Error(),
				})
				l.Error("record failed", zap.String("external_id", record.ExternalID), zap.Error(err))
			case result.State == reconcile.StateRejected:
				summary.Rejected++
				summary.Errors = append(summary.Errors, RecordError{
					ExternalID: record.ExternalID,
					Fields:     result.Errors,
				})
			case result.Operation == reconcile.OpCreate:
				summary.Created++
			default:
				summary.Updated++
			}
			return nil
		})
	}

	// Workers only record outcomes; Wait never returns an error here.
	_ = g.Wait()

	l.Info("batch complete",
		zap.Int("processed", summary.Processed),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("rejected", summary.Rejected),
		zap.Int("missing", summary.Missing),
		zap.Int("failed", summary.Failed))

	return summary
}
