package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssignIfMissing_FromCanonicalIdentifier(t *testing.T) {
	assigner := NewAssigner(DefaultPolicy(), nil)

	entity := &Entity{
		Kind: KindSecurity,
		Identifiers: []Identifier{
			{Type: TypeTicker, Value: "AAPL", Source: "MARKIT", Primary: true},
			{Type: TypeISIN, Value: "US0378331005", Source: "REUTERS", Primary: true},
		},
	}

	assigner.AssignIfMissing(entity)

	// ISIN precedes TICKER in canonical order regardless of slice order.
	assert.Equal(t, "IMS-ISIN-US0378331005", entity.InternalID)
	assert.Equal(t, TypeISIN, entity.CanonicalType)
	assert.Equal(t, "US0378331005", entity.CanonicalValue)
}

func TestAssignIfMissing_FallsBackToFirstIdentifier(t *testing.T) {
	policy := DefaultPolicy()
	// A policy whose canonical order knows nothing about tickers forces the
	// kind-prefixed fallback.
	policy.TypeOrder = []IdentifierType{TypeISIN, TypeCUSIP}
	assigner := NewAssigner(policy, nil)

	entity := &Entity{
		Kind: KindSecurity,
		Identifiers: []Identifier{
			{Type: TypeTicker, Value: "AAPL", Source: "MARKIT", Primary: true},
		},
	}

	assigner.AssignIfMissing(entity)

	assert.Equal(t, "IMS-SECURITY-TICKER-AAPL", entity.InternalID)
	assert.Empty(t, entity.CanonicalType)
}

func TestAssignIfMissing_TimestampFallbackForBareEntity(t *testing.T) {
	assigner := NewAssigner(DefaultPolicy(), nil)
	assigner.now = func() time.Time { return time.UnixMilli(1700000000000) }

	entity := NewEntity(KindCounterparty)

	assigner.AssignIfMissing(entity)

	assert.Equal(t, "IMS-COUNTERPARTY-1700000000000", entity.InternalID)
}

func TestAssignIfMissing_InternalIDImmutable(t *testing.T) {
	policy := DefaultPolicy()
	assigner := NewAssigner(policy, nil)
	resolver := NewResolver(policy, nil)

	// Entity minted off a ticker.
	entity := &Entity{
		Kind: KindSecurity,
		Identifiers: []Identifier{
			{Type: TypeTicker, Value: "AAPL", Source: "MARKIT", Primary: true},
		},
	}
	assigner.AssignIfMissing(entity)
	assert.Equal(t, "IMS-TICKER-AAPL", entity.InternalID)

	// A higher-priority ISIN arrives: the canonical identifier moves, the
	// internal identifier does not.
	record := IncomingRecord{
		Kind:        KindSecurity,
		Source:      "REUTERS",
		Identifiers: []RecordIdentifier{{Type: TypeISIN, Value: "US0378331005"}},
	}
	resolver.Resolve(entity, record)
	assigner.AssignIfMissing(entity)

	assert.Equal(t, "IMS-TICKER-AAPL", entity.InternalID, "internal identifiers never change once set")
	assert.Equal(t, TypeISIN, entity.CanonicalType)
	assert.Equal(t, "US0378331005", entity.CanonicalValue)
}

func TestAssignIfMissing_RecomputesCanonicalOnEveryCall(t *testing.T) {
	assigner := NewAssigner(DefaultPolicy(), nil)

	entity := &Entity{
		Kind:           KindSecurity,
		InternalID:     "IMS-TICKER-AAPL",
		CanonicalType:  TypeTicker,
		CanonicalValue: "AAPL",
		Identifiers: []Identifier{
			{Type: TypeTicker, Value: "AAPL", Source: "MARKIT", Primary: true},
			{Type: TypeCUSIP, Value: "037833100", Source: "BLOOMBERG", Primary: true},
		},
	}

	assigner.AssignIfMissing(entity)

	assert.Equal(t, TypeCUSIP, entity.CanonicalType)
	assert.Equal(t, "037833100", entity.CanonicalValue)
	assert.Equal(t, "IMS-TICKER-AAPL", entity.InternalID)
}
