package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EntityStore is the persistence collaborator. Lookups return a bounded
// candidate set (typically via an identifier index); the engine never asks
// for a full scan.
type EntityStore interface {
	// FindCandidates returns entities of the given kind holding any of the
	// hinted identifiers.
	FindCandidates(ctx context.Context, kind Kind, hints []RecordIdentifier) ([]*Entity, error)

	// Save persists the entity and returns the persisted state.
	Save(ctx context.Context, entity *Entity) (*Entity, error)
}

// ChangeEvent describes one committed reference-data change for downstream
// consumers.
type ChangeEvent struct {
	Operation      Operation      `json:"operation"`
	Kind           Kind           `json:"kind"`
	InternalID     string         `json:"internal_id"`
	CanonicalType  IdentifierType `json:"canonical_type,omitempty"`
	CanonicalValue string         `json:"canonical_value,omitempty"`
	Source         string         `json:"source"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Publisher hands finalized change events to the event-publication
// collaborator. Implementations may be asynchronous; the engine persists
// the entity before publishing, so consumers never observe partial state.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Service orchestrates one record's reconciliation:
// validate, match, resolve conflicts, assign identity, persist, emit.
// It is the only component with side effects; everything below it is a pure
// decision function.
type Service struct {
	policy    Policy
	store     EntityStore
	publisher Publisher
	matcher   Matcher
	resolver  *Resolver
	assigner  *Assigner
	locks     *keyedMutex
	logger    *zap.Logger
}

// NewService wires the engine components around a store and a publisher.
func NewService(policy Policy, store EntityStore, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		policy:    policy,
		store:     store,
		publisher: publisher,
		matcher:   NewMatcher(policy),
		resolver:  NewResolver(policy, logger),
		assigner:  NewAssigner(policy, logger),
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// Reconcile processes one incoming record to a terminal state. A rejected
// record returns a Result carrying per-field errors and a nil error; the
// error return is reserved for infrastructure failures and missing related
// entities (ErrNotFound), which batch callers count separately from bad
// records.
//
// Records resolving to the same real-world entity are serialized on the
// record's identifier keys; records for different entities run fully in
// parallel.
func (s *Service) Reconcile(ctx context.Context, record IncomingRecord) (*Result, error) {
	identifiers, vr := s.validate(record)
	if !vr.OK() {
		s.logger.Info("record rejected",
			zap.String("external_id", record.ExternalID),
			zap.String("source", record.Source),
			zap.Int("error_count", len(vr.Errors())))
		return &Result{State: StateRejected, Errors: vr.Errors()}, nil
	}

	// The record itself stays immutable; matching and merging work on the
	// normalized identifier list with inferred types filled in.
	normalized := record
	normalized.Identifiers = identifiers

	if err := s.checkConstituents(ctx, normalized); err != nil {
		return nil, err
	}

	// Serialize the match -> merge -> assign span per entity. The lock set
	// starts from the record's own identifier keys, but that alone is not
	// enough: two records can reach the same entity through disjoint
	// identifier subsets (one by ISIN, one by CUSIP of an entity carrying
	// both) and must still serialize. So after a match the lock set widens
	// to the union with every identifier on the matched entity, and the
	// match re-runs under the widened set, since the entity may have
	// changed while part of it was unlocked.
	keys := lockKeys(identifiers)
	unlock := s.locks.LockAll(keys)
	defer func() { unlock() }()

	var entity *Entity
	for {
		candidates, err := s.store.FindCandidates(ctx, normalized.Kind, identifiers)
		if err != nil {
			return nil, fmt.Errorf("candidate lookup failed: %w", err)
		}
		entity = s.matcher.FindMatch(normalized, candidates)
		if entity == nil {
			break
		}
		widened := widenKeys(keys, entity)
		if len(widened) == len(keys) {
			break
		}
		unlock()
		keys = widened
		unlock = s.locks.LockAll(keys)
	}

	operation := OpUpdate
	if entity == nil {
		entity = NewEntity(normalized.Kind)
		operation = OpCreate
	}

	s.resolver.Resolve(entity, normalized)
	s.assigner.AssignIfMissing(entity)

	saved, err := s.store.Save(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("save failed: %w", err)
	}

	event := ChangeEvent{
		Operation:      operation,
		Kind:           saved.Kind,
		InternalID:     saved.InternalID,
		CanonicalType:  saved.CanonicalType,
		CanonicalValue: saved.CanonicalValue,
		Source:         normalized.Source,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The entity is durably saved; a retry of the same record is
		// idempotent, so publication failures surface as record errors.
		return nil, fmt.Errorf("event publication failed: %w", err)
	}

	s.logger.Debug("record emitted",
		zap.String("external_id", normalized.ExternalID),
		zap.String("internal_id", saved.InternalID),
		zap.String("operation", string(operation)))

	return &Result{State: StateEmitted, Operation: operation, Entity: saved}, nil
}

// validate runs required-field checks and identifier format validation,
// accumulating every violation. It returns the identifier list with
// inferred types filled in; the list is only meaningful when the validation
// result is clean.
func (s *Service) validate(record IncomingRecord) ([]RecordIdentifier, *ValidationResult) {
	vr := &ValidationResult{}

	if record.ExternalID == "" {
		vr.Addf("externalId", "external id is required")
	}
	if record.Source == "" {
		vr.Addf("source", "source is required")
	}
	if !record.Kind.IsValid() {
		vr.Addf("kind", "unknown entity kind %q", string(record.Kind))
	}
	if record.Kind == KindSecurity && record.Attributes[AttrSecurityType] == "" {
		vr.Addf("attributes.securityType", "security type is required for securities")
	}

	identifiers := make([]RecordIdentifier, len(record.Identifiers))
	copy(identifiers, record.Identifiers)

	recognized := 0
	for i := range identifiers {
		id := &identifiers[i]
		field := fmt.Sprintf("identifiers[%d]", i)

		if id.Value == "" {
			vr.Addf(field+".value", "identifier value is required")
			continue
		}
		if id.Type == "" {
			detected, ok := DetectIdentifierType(id.Value)
			if !ok {
				vr.Addf(field+".type", "cannot infer identifier type from value %q", id.Value)
				continue
			}
			id.Type = detected
		} else if err := ValidateIdentifier(id.Type, id.Value); err != nil {
			vr.Addf(field+".value", "%q is not a valid %s", id.Value, id.Type)
			continue
		}
		if id.Type.IsKnown() {
			recognized++
		}
	}
	if recognized == 0 {
		vr.Addf("identifiers", "at least one recognized identifier is required")
	}

	return identifiers, vr
}

// lockKeys derives the serialization keys for a set of identifiers.
func lockKeys(identifiers []RecordIdentifier) []string {
	keys := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		keys = append(keys, string(id.Type)+"|"+id.Value)
	}
	return keys
}

// widenKeys returns the union of keys and the entity's identifier keys. The
// result keeps its input length when the entity adds nothing new, which is
// the loop's termination signal.
func widenKeys(keys []string, entity *Entity) []string {
	seen := make(map[string]struct{}, len(keys)+len(entity.Identifiers))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	out := append([]string(nil), keys...)
	for _, id := range entity.Identifiers {
		k := string(id.Type) + "|" + id.Value
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// checkConstituents verifies that every referenced underlying entity exists.
// A missing constituent fails this record alone, wrapped in ErrNotFound so
// the batch can separate "bad record" from "dependency not delivered yet".
func (s *Service) checkConstituents(ctx context.Context, record IncomingRecord) error {
	for _, ref := range record.Constituents {
		t := ref.Type
		if t == "" {
			detected, ok := DetectIdentifierType(ref.Value)
			if !ok {
				return fmt.Errorf("constituent %q: %w", ref.Value, ErrNotFound)
			}
			t = detected
		}
		hint := []RecordIdentifier{{Type: t, Value: ref.Value}}
		candidates, err := s.store.FindCandidates(ctx, KindSecurity, hint)
		if err != nil {
			return fmt.Errorf("constituent lookup failed: %w", err)
		}
		found := false
		for _, c := range candidates {
			if c.HasIdentifier(t, ref.Value) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("constituent %s %s: %w", t, ref.Value, ErrNotFound)
		}
	}
	return nil
}
