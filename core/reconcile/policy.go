package reconcile

// unknownSourceRank is assigned to any vendor absent from the priority
// table. It is worse than every configured rank, so a known vendor always
// outranks an unknown one.
const unknownSourceRank = 1 << 30

// Policy bundles the immutable arbitration configuration: which vendors we
// trust more, and which identifier schemes we prefer. It is injected at
// engine construction so tests can exercise different priority tables.
type Policy struct {
	// SourceRanks maps vendor name to trust rank. Lower rank wins.
	SourceRanks map[string]int

	// TypeOrder is the canonical identifier-type order. It drives match
	// order, canonical-identifier selection, and type detection. Callers
	// must not reorder it: the overlap between identifier formats makes
	// the ordering itself part of the contract.
	TypeOrder []IdentifierType
}

// DefaultPolicy returns the production arbitration configuration.
func DefaultPolicy() Policy {
	return Policy{
		SourceRanks: map[string]int{
			"REUTERS":   10,
			"BLOOMBERG": 20,
			"MARKIT":    30,
			"FACTSET":   40,
			"ICE":       50,
		},
		TypeOrder: []IdentifierType{
			TypeISIN, TypeCUSIP, TypeSEDOL, TypeBloombergID, TypeReutersID, TypeTicker,
			TypeLEI, TypeBIC, TypeSWIFT,
		},
	}
}

// SourceRank returns the trust rank for a vendor. Unknown vendors rank
// below every configured one.
func (p Policy) SourceRank(source string) int {
	if rank, ok := p.SourceRanks[source]; ok {
		return rank
	}
	return unknownSourceRank
}

// Outranks reports whether vendor a is strictly more trusted than vendor b.
// Equal ranks (including two unknown vendors) do not outrank: ties keep the
// existing value.
func (p Policy) Outranks(a, b string) bool {
	return p.SourceRank(a) < p.SourceRank(b)
}

// typeRank returns the position of t in the canonical type order, or a rank
// past the end for types outside it.
func (p Policy) typeRank(t IdentifierType) int {
	for i, ord := range p.TypeOrder {
		if ord == t {
			return i
		}
	}
	return len(p.TypeOrder)
}
