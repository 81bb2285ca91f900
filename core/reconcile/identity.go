package reconcile

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// internalIDPrefix namespaces every internal identifier minted by the engine.
const internalIDPrefix = "IMS"

// Assigner derives the internal identifier and canonical identifier for an
// entity. Internal identifiers are immutable: once set, later merges never
// change them, even if the canonical identifier moves to a better scheme.
type Assigner struct {
	policy Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewAssigner creates an assigner with the given policy.
func NewAssigner(policy Policy, logger *zap.Logger) *Assigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assigner{policy: policy, logger: logger, now: time.Now}
}

// AssignIfMissing recomputes the entity's canonical identifier fields and,
// if no internal identifier has been assigned yet, derives one:
//
//  1. From the canonical identifier (first type in canonical order present).
//  2. Failing that, from the entity kind and its first identifier.
//  3. Failing that, from the entity kind and the current time in millis.
//
// The timestamp fallback cannot be reproduced on replay, so reaching it is
// logged as a data-quality warning. The orchestrator rejects identifierless
// records before merge, so it only triggers for callers driving the
// assigner directly.
func (a *Assigner) AssignIfMissing(entity *Entity) {
	a.recomputeCanonical(entity)

	if entity.InternalID != "" {
		return
	}

	switch {
	case entity.CanonicalType != "":
		entity.InternalID = fmt.Sprintf("%s-%s-%s",
			internalIDPrefix, entity.CanonicalType, entity.CanonicalValue)
	case len(entity.Identifiers) > 0:
		first := entity.Identifiers[0]
		entity.InternalID = fmt.Sprintf("%s-%s-%s-%s",
			internalIDPrefix, entity.Kind, first.Type, first.Value)
	default:
		entity.InternalID = fmt.Sprintf("%s-%s-%d",
			internalIDPrefix, entity.Kind, a.now().UnixMilli())
		a.logger.Warn("internal id minted from timestamp; entity has no identifiers and cannot be re-matched on replay",
			zap.String("internal_id", entity.InternalID),
			zap.String("kind", string(entity.Kind)))
	}
}

// recomputeCanonical selects the canonical identifier: the primary
// identifier of the first type, in canonical order, present on the entity.
// Types outside the configured order can never become canonical.
func (a *Assigner) recomputeCanonical(entity *Entity) {
	for _, t := range a.policy.TypeOrder {
		first := -1
		for i, id := range entity.Identifiers {
			if id.Type != t {
				continue
			}
			if id.Primary {
				entity.CanonicalType = t
				entity.CanonicalValue = id.Value
				return
			}
			if first < 0 {
				first = i
			}
		}
		// No entry of this type carries the primary flag (entities built
		// outside the resolver); fall back to the first one present.
		if first >= 0 {
			entity.CanonicalType = t
			entity.CanonicalValue = entity.Identifiers[first].Value
			return
		}
	}
	entity.CanonicalType = ""
	entity.CanonicalValue = ""
}
