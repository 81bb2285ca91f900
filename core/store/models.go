package store

import (
	"time"

	"refdata-manager/core/reconcile"
)

// EntityModel represents the 'entities' table: one row per internal entity,
// with the conflict-resolved attribute values.
type EntityModel struct {
	InternalID       string    `gorm:"column:internal_id;primaryKey"`
	Kind             string    `gorm:"column:kind;index"`
	Name             string    `gorm:"column:name"`
	Status           string    `gorm:"column:status"`
	SecurityType     string    `gorm:"column:security_type"`
	Currency         string    `gorm:"column:currency"`
	Market           string    `gorm:"column:market"`
	Issuer           string    `gorm:"column:issuer"`
	IsBasket         bool      `gorm:"column:is_basket"`
	CounterpartyType string    `gorm:"column:counterparty_type"`
	Country          string    `gorm:"column:country"`
	Sector           string    `gorm:"column:sector"`
	CanonicalType    string    `gorm:"column:canonical_type"`
	CanonicalValue   string    `gorm:"column:canonical_value"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`

	Identifiers []IdentifierModel `gorm:"foreignKey:EntityInternalID;references:InternalID"`
}

// TableName overrides the table name for entities.
func (EntityModel) TableName() string {
	return "entities"
}

// IdentifierModel represents the 'entity_identifiers' table: every identifier
// ever accepted for an entity, including retained vendor disagreements. The
// (id_type, id_value) pair is the candidate-lookup index.
type IdentifierModel struct {
	ID               uint   `gorm:"column:id;primaryKey;autoIncrement"`
	EntityInternalID string `gorm:"column:entity_internal_id;index"`
	IDType           string `gorm:"column:id_type;index:idx_identifier_lookup"`
	IDValue          string `gorm:"column:id_value;index:idx_identifier_lookup"`
	Source           string `gorm:"column:source"`
	IsPrimary        bool   `gorm:"column:is_primary"`
}

// TableName overrides the table name for entity identifiers.
func (IdentifierModel) TableName() string {
	return "entity_identifiers"
}

// fromEntity converts the engine's entity view into row models. Identifier
// rows keep the entity's slice order so round-tripping preserves the
// first-reported ordering the resolver relies on.
func fromEntity(e *reconcile.Entity) *EntityModel {
	m := &EntityModel{
		InternalID:       e.InternalID,
		Kind:             string(e.Kind),
		Name:             e.Name,
		Status:           e.Status,
		SecurityType:     e.SecurityType,
		Currency:         e.Currency,
		Market:           e.Market,
		Issuer:           e.Issuer,
		IsBasket:         e.Basket,
		CounterpartyType: e.CounterpartyType,
		Country:          e.Country,
		Sector:           e.Sector,
		CanonicalType:    string(e.CanonicalType),
		CanonicalValue:   e.CanonicalValue,
	}
	for _, id := range e.Identifiers {
		m.Identifiers = append(m.Identifiers, IdentifierModel{
			EntityInternalID: e.InternalID,
			IDType:           string(id.Type),
			IDValue:          id.Value,
			Source:           id.Source,
			IsPrimary:        id.Primary,
		})
	}
	return m
}

// toEntity converts row models back into the engine's entity view.
func toEntity(m *EntityModel) *reconcile.Entity {
	e := &reconcile.Entity{
		InternalID:       m.InternalID,
		Kind:             reconcile.Kind(m.Kind),
		Name:             m.Name,
		Status:           m.Status,
		SecurityType:     m.SecurityType,
		Currency:         m.Currency,
		Market:           m.Market,
		Issuer:           m.Issuer,
		Basket:           m.IsBasket,
		CounterpartyType: m.CounterpartyType,
		Country:          m.Country,
		Sector:           m.Sector,
		CanonicalType:    reconcile.IdentifierType(m.CanonicalType),
		CanonicalValue:   m.CanonicalValue,
	}
	for _, id := range m.Identifiers {
		e.Identifiers = append(e.Identifiers, reconcile.Identifier{
			Type:    reconcile.IdentifierType(id.IDType),
			Value:   id.IDValue,
			Source:  id.Source,
			Primary: id.IsPrimary,
		})
	}
	return e
}
