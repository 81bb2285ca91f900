package securities_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"refdata-manager/core/reconcile"
	"refdata-manager/feature/securities"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore backs both the engine's candidate lookups and the feature's Get.
type stubStore struct {
	entities map[string]*reconcile.Entity
}

func newStubStore() *stubStore {
	return &stubStore{entities: map[string]*reconcile.Entity{}}
}

func (s *stubStore) FindCandidates(_ context.Context, kind reconcile.Kind, hints []reconcile.RecordIdentifier) ([]*reconcile.Entity, error) {
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

func (s *stubStore) Save(_ context.Context, entity *reconcile.Entity) (*reconcile.Entity, error) {
	s.entities[entity.InternalID] = entity
	return entity, nil
}

func (s *stubStore) Get(_ context.Context, kind reconcile.Kind, internalID string) (*reconcile.Entity, error) {
	e, ok := s.entities[internalID]
	if !ok || e.Kind != kind {
		return nil, fmt.Errorf("entity %s: %w", internalID, reconcile.ErrNotFound)
	}
	return e, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, reconcile.ChangeEvent) error { return nil }

func setupApp(t *testing.T) (*fiber.App, *stubStore) {
	t.Helper()
	store := newStubStore()
	engine := reconcile.NewService(reconcile.DefaultPolicy(), store, stubPublisher{}, zap.NewNop())

	app := fiber.New()
	feature := securities.NewFeature(engine, store, zap.NewNop())
	require.NoError(t, feature.Load(app))
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestHandleReconcileCreate(t *testing.T) {
	app, _ := setupApp(t)

	record := reconcile.IncomingRecord{
		ExternalID: "BB-1001",
		Source:     "BLOOMBERG",
		Attributes: map[string]string{
			"name":         "Apple Inc",
			"securityType": "EQUITY",
			"currency":     "USD",
		},
		Identifiers: []reconcile.RecordIdentifier{
			{Value: "US0378331005"},
		},
	}

	status, body := postJSON(t, app, "/securities/reconcile", record)
	assert.Equal(t, fiber.StatusCreated, status)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, reconcile.StateEmitted, result.State)
	assert.Equal(t, reconcile.OpCreate, result.Operation)
	require.NotNil(t, result.Entity)
	assert.Equal(t, "IMS-ISIN-US0378331005", result.Entity.InternalID)
}

func TestHandleReconcileUpdate(t *testing.T) {
	app, _ := setupApp(t)

	record := reconcile.IncomingRecord{
		ExternalID: "RT-1",
		Source:     "REUTERS",
		Attributes: map[string]string{"name": "Apple Inc", "securityType": "EQUITY"},
		Identifiers: []reconcile.RecordIdentifier{
			{Type: reconcile.TypeISIN, Value: "US0378331005"},
		},
	}
	status, _ := postJSON(t, app, "/securities/reconcile", record)
	require.Equal(t, fiber.StatusCreated, status)

	record.ExternalID = "RT-2"
	record.Attributes["market"] = "XNAS"
	status, body := postJSON(t, app, "/securities/reconcile", record)
	assert.Equal(t, fiber.StatusOK, status)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, reconcile.OpUpdate, result.Operation)
	assert.Equal(t, "XNAS", result.Entity.Market)
}

func TestHandleReconcileRejected(t *testing.T) {
	app, _ := setupApp(t)

	record := reconcile.IncomingRecord{
		ExternalID: "BB-BAD",
		Source:     "BLOOMBERG",
		Attributes: map[string]string{"securityType": "EQUITY"},
	}

	status, body := postJSON(t, app, "/securities/reconcile", record)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, reconcile.StateRejected, result.State)
	assert.NotEmpty(t, result.Errors)
}

func TestHandleReconcileBadBody(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("POST", "/securities/reconcile", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGet(t *testing.T) {
	app, store := setupApp(t)
	store.entities["IMS-ISIN-US0378331005"] = &reconcile.Entity{
		InternalID: "IMS-ISIN-US0378331005",
		Kind:       reconcile.KindSecurity,
		Name:       "Apple Inc",
		Identifiers: []reconcile.Identifier{
			{Type: reconcile.TypeISIN, Value: "US0378331005", Source: "REUTERS", Primary: true},
		},
	}

	req := httptest.NewRequest("GET", "/securities/IMS-ISIN-US0378331005", nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entity reconcile.Entity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entity))
	assert.Equal(t, "Apple Inc", entity.Name)
}

func TestHandleGetNotFound(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/securities/IMS-MISSING", nil)
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
