package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"refdata-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedEngine returns a canned outcome per external id.
type scriptedEngine struct {
	outcomes map[string]func() (*reconcile.Result, error)
	calls    atomic.Int64
}

func (e *scriptedEngine) Reconcile(_ context.Context, record reconcile.IncomingRecord) (*reconcile.Result, error) {
	e.calls.Add(1)
	if f, ok := e.outcomes[record.ExternalID]; ok {
		return f()
	}
	return &reconcile.Result{State: reconcile.StateEmitted, Operation: reconcile.OpCreate}, nil
}

func TestRunnerCounts(t *testing.T) {
	engine := &scriptedEngine{outcomes: map[string]func() (*reconcile.Result, error){
		"ok-create": func() (*reconcile.Result, error) {
			return &reconcile.Result{State: reconcile.StateEmitted, Operation: reconcile.OpCreate}, nil
		},
		"ok-update": func() (*reconcile.Result, error) {
			return &reconcile.Result{State: reconcile.StateEmitted, Operation: reconcile.OpUpdate}, nil
		},
		"bad": func() (*reconcile.Result, error) {
			return &reconcile.Result{
				State:  reconcile.StateRejected,
				Errors: []reconcile.FieldError{{Field: "source", Message: "source is required"}},
			}, nil
		},
		"missing-dep": func() (*reconcile.Result, error) {
			return nil, fmt.Errorf("constituent ISIN US0378331005: %w", reconcile.ErrNotFound)
		},
		"broken": func() (*reconcile.Result, error) {
			return nil, errors.New("save failed: connection reset")
		},
	}}

	records := []reconcile.IncomingRecord{
		{ExternalID: "ok-create"},
		{ExternalID: "ok-update"},
		{ExternalID: "bad"},
		{ExternalID: "missing-dep"},
		{ExternalID: "broken"},
	}

	runner := NewRunner(engine, 4, zap.NewNop())
	summary := runner.Run(context.Background(), reconcile.KindSecurity, "BLOOMBERG", records)

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, int64(5), engine.calls.Load())
	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, "BLOOMBERG", summary.Source)

	// One error entry per non-emitted record, rejections carrying fields.
	require.Len(t, summary.Errors, 3)
	for _, re := range summary.Errors {
		if re.ExternalID == "bad" {
			require.Len(t, re.Fields, 1)
			assert.Equal(t, "source", re.Fields[0].Field)
		} else {
			assert.NotEmpty(t, re.Error)
		}
	}
}

func TestRunnerFillsBatchDefaults(t *testing.T) {
	var seen []reconcile.IncomingRecord
	engine := &scriptedEngine{outcomes: map[string]func() (*reconcile.Result, error){}}
	runner := NewRunner(&captureEngine{inner: engine, seen: &seen}, 1, zap.NewNop())

	records := []reconcile.IncomingRecord{{ExternalID: "r1"}}
	summary := runner.Run(context.Background(), reconcile.KindCounterparty, "MARKIT", records)

	assert.Equal(t, 1, summary.Created)
	require.Len(t, seen, 1)
	assert.Equal(t, reconcile.KindCounterparty, seen[0].Kind)
	assert.Equal(t, "MARKIT", seen[0].Source)
}

// captureEngine records what the runner hands to the engine. Safe only with
// a single worker.
type captureEngine struct {
	inner Reconciler
	seen  *[]reconcile.IncomingRecord
}

func (c *captureEngine) Reconcile(ctx context.Context, record reconcile.IncomingRecord) (*reconcile.Result, error) {
	*c.seen = append(*c.seen, record)
	return c.inner.Reconcile(ctx, record)
}

func TestRunnerParallel(t *testing.T) {
	engine := &scriptedEngine{outcomes: map[string]func() (*reconcile.Result, error){}}
	runner := NewRunner(engine, 8, zap.NewNop())

	records := make([]reconcile.IncomingRecord, 100)
	for i := range records {
		records[i] = reconcile.IncomingRecord{ExternalID: fmt.Sprintf("r%d", i)}
	}

	summary := runner.Run(context.Background(), reconcile.KindSecurity, "REUTERS", records)
	assert.Equal(t, 100, summary.Created)
	assert.Equal(t, int64(100), engine.calls.Load())
}
