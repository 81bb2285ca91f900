package reconcile

import "strings"

// detectOrder fixes the scheme priority for type inference. The rules
// overlap (a 9-character alphanumeric value satisfies both CUSIP and a
// short ticker), so the ordering is itself a documented tie-break and must
// not be changed.
var detectOrder = []IdentifierType{
	TypeISIN, TypeCUSIP, TypeSEDOL, TypeBloombergID, TypeReutersID, TypeTicker,
}

// DetectIdentifierType infers the identifier scheme from a raw value when
// no type was declared. It applies the same structural rules as
// ValidateIdentifier, in detectOrder, and returns the first scheme whose
// rule matches. Counterparty schemes (LEI, BIC, SWIFT) are declared-type
// only and never inferred.
//
// A "BBG"-prefixed value lexically satisfies the ISIN shape as well; the
// literal prefix is the stronger signal, so Bloomberg IDs are carved out of
// ISIN inference and resolve to BLOOMBERG_ID.
func DetectIdentifierType(value string) (IdentifierType, bool) {
	for _, t := range detectOrder {
		if t == TypeISIN && strings.HasPrefix(value, "BBG") {
			continue
		}
		if formatRules[t].MatchString(value) {
			return t, true
		}
	}
	return "", false
}
