package counterparties

import (
	"context"

	"refdata-manager/core/reconcile"

	"go.uber.org/zap"
)

// Reconciler runs one record through the resolution engine.
type Reconciler interface {
	Reconcile(ctx context.Context, record reconcile.IncomingRecord) (*reconcile.Result, error)
}

// EntityGetter loads one entity by internal id.
type EntityGetter interface {
	Get(ctx context.Context, kind reconcile.Kind, internalID string) (*reconcile.Entity, error)
}

// Service handles counterparty reconciliation and lookup.
type Service struct {
	engine Reconciler
	store  EntityGetter
	logger *zap.Logger
}

// NewService creates a new counterparties service.
func NewService(engine Reconciler, store EntityGetter, logger *zap.Logger) *Service {
	return &Service{engine: engine, store: store, logger: logger}
}

// Reconcile runs one vendor counterparty record through the engine. The
// record's kind is pinned to COUNTERPARTY regardless of what the caller sent.
func (s *Service) Reconcile(ctx context.Context, record reconcile.IncomingRecord) (*reconcile.Result, error) {
	record.Kind = reconcile.KindCounterparty
	return s.engine.Reconcile(ctx, record)
}

// Get returns the counterparty with the given internal id.
func (s *Service) Get(ctx context.Context, internalID string) (*reconcile.Entity, error) {
	return s.store.Get(ctx, reconcile.KindCounterparty, internalID)
}
