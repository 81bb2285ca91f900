package reconcile

import (
	"sort"

	"go.uber.org/zap"
)

// Resolver arbitrates disagreements between an existing entity and an
// incoming vendor record, attribute by attribute and identifier by
// identifier, using the source priority table. Every decided conflict is
// logged at INFO with both competing values and the winning source, so no
// overwrite is silent.
type Resolver struct {
	policy Policy
	logger *zap.Logger
}

// NewResolver creates a resolver with the given policy.
func NewResolver(policy Policy, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{policy: policy, logger: logger}
}

// Resolve merges the incoming record into the entity in place. Attributes
// and identifiers are arbitrated independently; re-applying the same record
// produces no further change.
func (r *Resolver) Resolve(entity *Entity, record IncomingRecord) {
	r.resolveAttributes(entity, record)
	r.resolveIdentifiers(entity, record)
	r.recomputePrimaries(entity)
}

// resolveAttributes applies the attribute-level conflict policy. The source
// of an existing attribute is approximated by the source of the entity's
// current primary identifier; true per-field provenance is not stored.
func (r *Resolver) resolveAttributes(entity *Entity, record IncomingRecord) {
	if len(record.Attributes) == 0 {
		return
	}

	table := attributeTable(entity.Kind)
	existingSource := entity.primarySource()

	// Sorted iteration keeps conflict logs deterministic across runs.
	names := make([]string, 0, len(record.Attributes))
	for name := range record.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		incoming := record.Attributes[name]
		if incoming == "" {
			continue
		}

		acc, ok := table[name]
		if !ok {
			// Mapping failure is recoverable per attribute: skip this one
			// and keep processing the rest of the record.
			r.logger.Warn("unknown attribute skipped",
				zap.String("attribute", name),
				zap.String("kind", string(entity.Kind)),
				zap.String("source", record.Source))
			continue
		}

		existing := acc.get(entity)
		if existing == "" {
			acc.set(entity, incoming)
			continue
		}
		if existing == incoming {
			continue
		}

		if r.policy.Outranks(record.Source, existingSource) {
			r.logger.Info("attribute conflict resolved",
				zap.String("attribute", name),
				zap.String("existing_value", existing),
				zap.String("existing_source", existingSource),
				zap.String("incoming_value", incoming),
				zap.String("winning_source", record.Source))
			acc.set(entity, incoming)
		} else {
			// Ties keep the existing value: first writer wins for equal trust.
			r.logger.Info("attribute conflict retained",
				zap.String("attribute", name),
				zap.String("existing_value", existing),
				zap.String("incoming_value", incoming),
				zap.String("incoming_source", record.Source),
				zap.String("winning_source", existingSource))
		}
	}
}

// resolveIdentifiers applies the identifier-level conflict policy. The
// highest-priority source's value always holds the current slot for a type;
// outranked disagreements are retained as separate non-primary identifiers
// so no vendor-reported value is silently lost.
func (r *Resolver) resolveIdentifiers(entity *Entity, record IncomingRecord) {
	for _, rid := range record.Identifiers {
		if rid.Value == "" {
			continue
		}

		cur := r.currentSlot(entity, rid.Type)
		if cur < 0 {
			// First identifier of this type.
			entity.Identifiers = append(entity.Identifiers, Identifier{
				Type:   rid.Type,
				Value:  rid.Value,
				Source: record.Source,
			})
			continue
		}

		current := &entity.Identifiers[cur]
		if current.Value == rid.Value {
			// Agrees with the current winner. A stale disagreement from the
			// same vendor is brought up to date so the audit trail reflects
			// what the vendor last said.
			r.updateSameSource(entity, rid, record.Source, cur)
			continue
		}

		if r.policy.Outranks(record.Source, current.Source) {
			r.logger.Info("identifier conflict resolved",
				zap.String("type", string(rid.Type)),
				zap.String("existing_value", current.Value),
				zap.String("existing_source", current.Source),
				zap.String("incoming_value", rid.Value),
				zap.String("winning_source", record.Source))
			current.Value = rid.Value
			current.Source = record.Source
			if current.Primary && entity.CanonicalType == rid.Type {
				entity.CanonicalValue = rid.Value
			}
			// The winner may have previously been retained as a
			// disagreement from this vendor; that entry is now duplicated.
			r.dropOtherFromSource(entity, rid.Type, record.Source, cur)
			continue
		}

		// Incoming does not outrank: keep the current slot, retain the
		// disagreement under its own source.
		r.logger.Info("identifier conflict retained",
			zap.String("type", string(rid.Type)),
			zap.String("existing_value", current.Value),
			zap.String("incoming_value", rid.Value),
			zap.String("incoming_source", record.Source),
			zap.String("winning_source", current.Source))
		if !r.updateSameSource(entity, rid, record.Source, -1) {
			entity.Identifiers = append(entity.Identifiers, Identifier{
				Type:   rid.Type,
				Value:  rid.Value,
				Source: record.Source,
			})
		}
	}
}

// currentSlot returns the index of the best-ranked identifier of the given
// type, or -1 if the entity has none. Rank ties resolve to the earliest
// entry, so the slot is stable across repeated resolutions.
func (r *Resolver) currentSlot(entity *Entity, t IdentifierType) int {
	best := -1
	for i, id := range entity.Identifiers {
		if id.Type != t {
			continue
		}
		if best < 0 || r.policy.Outranks(id.Source, entity.Identifiers[best].Source) {
			best = i
		}
	}
	return best
}

// updateSameSource updates an existing identifier of the same type and
// source in place, ignoring the entry at index skip. Returns true if such an
// entry existed (whether or not its value changed).
func (r *Resolver) updateSameSource(entity *Entity, rid RecordIdentifier, source string, skip int) bool {
	for i := range entity.Identifiers {
		if i == skip {
			continue
		}
		id := &entity.Identifiers[i]
		if id.Type == rid.Type && id.Source == source {
			id.Value = rid.Value
			return true
		}
	}
	return false
}

// dropOtherFromSource removes identifiers of the given type and source other
// than the one at index keep. Within one entity a (type, source) pair holds
// at most one value.
func (r *Resolver) dropOtherFromSource(entity *Entity, t IdentifierType, source string, keep int) {
	kept := entity.Identifiers[:0]
	for i, id := range entity.Identifiers {
		if i != keep && id.Type == t && id.Source == source {
			continue
		}
		kept = append(kept, id)
	}
	entity.Identifiers = kept
}

// recomputePrimaries re-marks, for every identifier type on the entity, the
// best-ranked entry as primary. Ties go to the earliest entry.
func (r *Resolver) recomputePrimaries(entity *Entity) {
	seen := make(map[IdentifierType]bool, len(entity.Identifiers))
	for i := range entity.Identifiers {
		entity.Identifiers[i].Primary = false
	}
	for i := range entity.Identifiers {
		t := entity.Identifiers[i].Type
		if seen[t] {
			continue
		}
		seen[t] = true
		if slot := r.currentSlot(entity, t); slot >= 0 {
			entity.Identifiers[slot].Primary = true
		}
	}
}
