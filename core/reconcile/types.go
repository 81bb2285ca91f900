package reconcile

// Kind identifies which family of reference-data entity a record describes.
type Kind string

const (
	// KindSecurity covers tradeable instruments (equities, bonds, ETFs, baskets).
	KindSecurity Kind = "SECURITY"
	// KindCounterparty covers legal entities we trade with or settle against.
	KindCounterparty Kind = "COUNTERPARTY"
)

// IsValid reports whether the kind is one of the supported entity families.
func (k Kind) IsValid() bool {
	return k == KindSecurity || k == KindCounterparty
}

// IdentifierType is an industry identifier scheme.
type IdentifierType string

const (
	TypeISIN        IdentifierType = "ISIN"
	TypeCUSIP       IdentifierType = "CUSIP"
	TypeSEDOL       IdentifierType = "SEDOL"
	TypeBloombergID IdentifierType = "BLOOMBERG_ID"
	TypeReutersID   IdentifierType = "REUTERS_ID"
	TypeTicker      IdentifierType = "TICKER"

	// Counterparty-specific schemes. These are never inferred from a raw
	// value; they must arrive with a declared type.
	TypeLEI   IdentifierType = "LEI"
	TypeBIC   IdentifierType = "BIC"
	TypeSWIFT IdentifierType = "SWIFT"
)

// KnownTypes lists every identifier scheme the engine recognizes.
var KnownTypes = []IdentifierType{
	TypeISIN, TypeCUSIP, TypeSEDOL, TypeBloombergID, TypeReutersID, TypeTicker,
	TypeLEI, TypeBIC, TypeSWIFT,
}

// IsKnown reports whether t is part of the closed identifier enumeration.
func (t IdentifierType) IsKnown() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Identifier is one external name for an entity: a value in some scheme,
// attributed to the vendor that reported it.
type Identifier struct {
	// Type is the identifier scheme (ISIN, CUSIP, ...).
	Type IdentifierType `json:"type"`

	// Value is the raw identifier value.
	Value string `json:"value"`

	// Source is the vendor that supplied this value.
	Source string `json:"source"`

	// Primary marks the winning identifier for this type. At most one
	// identifier per type carries the flag; non-primary identifiers of the
	// same type are retained vendor disagreements.
	Primary bool `json:"primary"`
}

// Entity is the internal, canonical view of one real-world security or
// counterparty, merged from every vendor that has reported on it.
type Entity struct {
	// InternalID is the stable internal identifier. Once assigned it never
	// changes for the lifetime of the entity.
	InternalID string `json:"internal_id"`

	// Kind is the entity family.
	Kind Kind `json:"kind"`

	// Name is the issuer or legal name.
	Name string `json:"name"`

	// Status is the lifecycle status as reported by vendors (ACTIVE, ...).
	Status string `json:"status"`

	// Security attributes.
	SecurityType string `json:"security_type,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Market       string `json:"market,omitempty"`
	Issuer       string `json:"issuer,omitempty"`
	Basket       bool   `json:"basket,omitempty"`

	// Counterparty attributes.
	CounterpartyType string `json:"counterparty_type,omitempty"`
	Country          string `json:"country,omitempty"`
	Sector           string `json:"sector,omitempty"`

	// CanonicalType and CanonicalValue denormalize the entity's best
	// external name: the primary identifier of the first type, in canonical
	// type order, present on the entity.
	CanonicalType  IdentifierType `json:"canonical_type,omitempty"`
	CanonicalValue string         `json:"canonical_value,omitempty"`

	// Identifiers holds every identifier reported for this entity,
	// including retained disagreements from outranked vendors.
	Identifiers []Identifier `json:"identifiers"`
}

// NewEntity creates an empty entity of the given kind.
func NewEntity(kind Kind) *Entity {
	return &Entity{Kind: kind}
}

// IdentifiersOfType returns all identifiers of the given type, in the order
// they were added.
func (e *Entity) IdentifiersOfType(t IdentifierType) []Identifier {
	var out []Identifier
	for _, id := range e.Identifiers {
		if id.Type == t {
			out = append(out, id)
		}
	}
	return out
}

// HasIdentifier reports whether the entity carries the exact (type, value)
// pair from any source.
func (e *Entity) HasIdentifier(t IdentifierType, value string) bool {
	for _, id := range e.Identifiers {
		if id.Type == t && id.Value == value {
			return true
		}
	}
	return false
}

// primarySource returns the source of the entity's current primary
// identifier. Per-field provenance is not stored; the primary identifier's
// vendor stands in for "who last authored this entity" when arbitrating
// attribute conflicts. This is a deliberate approximation inherited from the
// original design.
func (e *Entity) primarySource() string {
	for _, id := range e.Identifiers {
		if id.Primary {
			return id.Source
		}
	}
	if len(e.Identifiers) > 0 {
		return e.Identifiers[0].Source
	}
	return ""
}

// RecordIdentifier is an identifier as reported on an incoming record. Type
// may be empty, in which case the engine infers it from the value shape.
type RecordIdentifier struct {
	Type  IdentifierType `json:"type"`
	Value string         `json:"value"`
}

// IncomingRecord is a single-source snapshot of one entity as reported by
// one vendor in one batch. It is immutable: the engine consumes it exactly
// once and never writes to it.
type IncomingRecord struct {
	// ExternalID is the vendor's own key for the record, used for error
	// reporting back to the ingestion pipeline.
	ExternalID string `json:"external_id"`

	// Kind is the entity family the record describes.
	Kind Kind `json:"kind"`

	// Source names the vendor that produced the record.
	Source string `json:"source"`

	// Attributes holds the business attributes the vendor reported, keyed
	// by canonical attribute name. Empty values mean "not reported".
	Attributes map[string]string `json:"attributes"`

	// Identifiers holds the identifiers the vendor reported.
	Identifiers []RecordIdentifier `json:"identifiers"`

	// Constituents references underlying securities for basket or composite
	// instruments. Each must resolve to an existing entity.
	Constituents []RecordIdentifier `json:"constituents,omitempty"`
}

// Operation tells the event-publication collaborator whether a resolution
// created a new entity or updated an existing one.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
)

// State is the terminal state of one record's trip through the engine.
type State string

const (
	// StateEmitted means the record merged cleanly and the final entity was
	// persisted and handed to event publication.
	StateEmitted State = "EMITTED"

	// StateRejected means validation failed; nothing was merged.
	StateRejected State = "REJECTED"
)

// Result is the reconciliation outcome for a single incoming record.
type Result struct {
	// State is EMITTED or REJECTED.
	State State `json:"state"`

	// Operation is CREATE or UPDATE. Empty for rejected records.
	Operation Operation `json:"operation,omitempty"`

	// Entity is the final persisted entity. Nil for rejected records.
	Entity *Entity `json:"entity,omitempty"`

	// Errors holds the field-level validation failures for rejected
	// records, one entry per violated field.
	Errors []FieldError `json:"errors,omitempty"`
}
