package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"refdata-manager/core/reconcile"
	"refdata-manager/core/storage/mocks"
	"refdata-manager/feature/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a concurrency-safe in-memory entity store.
type memStore struct {
	mu       sync.Mutex
	entities map[string]*reconcile.Entity
}

func newMemStore() *memStore {
	return &memStore{entities: map[string]*reconcile.Entity{}}
}

func (s *memStore) FindCandidates(_ context.Context, kind reconcile.Kind, hints []reconcile.RecordIdentifier) ([]*reconcile.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*reconcile.Entity
	for _, e := range s.entities {
		if e.Kind != kind {
			continue
		}
		for _, h := range hints {
			if e.HasIdentifier(h.Type, h.Value) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, entity *reconcile.Entity) (*reconcile.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.InternalID] = entity
	return entity, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, reconcile.ChangeEvent) error { return nil }

func setupIngest(t *testing.T, client *mocks.Client) (*fiber.App, *memStore) {
	t.Helper()
	store := newMemStore()
	engine := reconcile.NewService(reconcile.DefaultPolicy(), store, nopPublisher{}, zap.NewNop())
	runner := ingest.NewRunner(engine, 4, zap.NewNop())
	svc := ingest.NewService(client, "vendor-feeds", runner, zap.NewNop())

	app := fiber.New()
	feature := ingest.NewFeature(svc)
	require.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, store
}

func TestHandleIngestCSV(t *testing.T) {
	csvData := `externalId,name,securityType,currency,isin
BB-1,Apple Inc,EQUITY,USD,US0378331005
BB-2,Missing Type,,USD,US5949181045
`
	mockClient := new(mocks.Client)
	mockClient.On("GetObject", mock.Anything, "vendor-feeds", "bloomberg/eod.csv", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(csvData))), nil)

	app, store := setupIngest(t, mockClient)

	body, _ := json.Marshal(map[string]string{
		"object": "bloomberg/eod.csv",
		"kind":   "SECURITY",
		"source": "BLOOMBERG",
	})
	req := httptest.NewRequest("POST", "/ingest/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary ingest.BatchSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Rejected)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "BB-2", summary.Errors[0].ExternalID)

	// The clean record landed in the store under its canonical identity.
	assert.Contains(t, store.entities, "IMS-ISIN-US0378331005")
	mockClient.AssertExpectations(t)
}

func TestHandleIngestUnknownKind(t *testing.T) {
	app, _ := setupIngest(t, new(mocks.Client))

	body, _ := json.Marshal(map[string]string{
		"object": "x.csv",
		"kind":   "PORTFOLIO",
		"source": "BLOOMBERG",
	})
	req := httptest.NewRequest("POST", "/ingest/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleIngestMissingObject(t *testing.T) {
	app, _ := setupIngest(t, new(mocks.Client))

	body, _ := json.Marshal(map[string]string{
		"kind":   "SECURITY",
		"source": "BLOOMBERG",
	})
	req := httptest.NewRequest("POST", "/ingest/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
