package reconcile

import "sort"

// Matcher finds the existing entity an incoming record refers to, if any.
type Matcher struct {
	policy Policy
}

// NewMatcher creates a matcher using the given arbitration policy.
func NewMatcher(policy Policy) Matcher {
	return Matcher{policy: policy}
}

// FindMatch tries each identifier present on the record, in canonical type
// order, against the candidate pool and returns the first entity holding an
// identifier with the same (type, value). Matching is source-blind: a value
// match is sufficient no matter which vendor supplied either side.
//
// A record with no identifiers never matches; callers surface that as a
// validation failure before reaching the matcher.
func (m Matcher) FindMatch(record IncomingRecord, candidates []*Entity) *Entity {
	if len(record.Identifiers) == 0 {
		return nil
	}

	// Order the record's identifiers by canonical type rank, keeping the
	// record order within a type.
	ordered := make([]RecordIdentifier, len(record.Identifiers))
	copy(ordered, record.Identifiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return m.policy.typeRank(ordered[i].Type) < m.policy.typeRank(ordered[j].Type)
	})

	for _, rid := range ordered {
		if rid.Value == "" {
			continue
		}
		for _, candidate := range candidates {
			if candidate.HasIdentifier(rid.Type, rid.Value) {
				return candidate
			}
		}
	}
	return nil
}
