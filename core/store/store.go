package store

import (
	"context"
	"errors"
	"fmt"

	"refdata-manager/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists entities and their identifiers and serves the engine's
// candidate lookups via the identifier index.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a store backed by the given database connection.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the entities and entity_identifiers tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&EntityModel{}, &IdentifierModel{})
}

// FindCandidates returns entities of the given kind holding any of the hinted
// (type, value) identifier pairs. The lookup goes through the identifier
// index; it never scans the entities table.
func (s *Store) FindCandidates(ctx context.Context, kind reconcile.Kind, hints []reconcile.RecordIdentifier) ([]*reconcile.Entity, error) {
	var conds *gorm.DB
	for _, h := range hints {
		if h.Value == "" {
			continue
		}
		if conds == nil {
			conds = s.db.Where("id_type = ? AND id_value = ?", string(h.Type), h.Value)
		} else {
			conds = conds.Or("id_type = ? AND id_value = ?", string(h.Type), h.Value)
		}
	}
	if conds == nil {
		return nil, nil
	}

	sub := s.db.Model(&IdentifierModel{}).Select("entity_internal_id").Where(conds)

	var rows []EntityModel
	err := s.db.WithContext(ctx).
		Preload("Identifiers").
		Where("kind = ?", string(kind)).
		Where("internal_id IN (?)", sub).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}

	entities := make([]*reconcile.Entity, 0, len(rows))
	for i := range rows {
		entities = append(entities, toEntity(&rows[i]))
	}
	return entities, nil
}

// Get loads one entity of the given kind by internal id. It returns
// reconcile.ErrNotFound when no such entity exists.
func (s *Store) Get(ctx context.Context, kind reconcile.Kind, internalID string) (*reconcile.Entity, error) {
	var row EntityModel
	err := s.db.WithContext(ctx).
		Preload("Identifiers").
		Where("kind = ?", string(kind)).
		First(&row, "internal_id = ?", internalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("entity %s: %w", internalID, reconcile.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("entity lookup failed: %w", err)
	}
	return toEntity(&row), nil
}

// Save upserts the entity row and replaces its identifier rows in a single
// transaction. Replacing instead of diffing keeps the identifier order in the
// database identical to the resolver's in-memory order.
func (s *Store) Save(ctx context.Context, entity *reconcile.Entity) (*reconcile.Entity, error) {
	model := fromEntity(entity)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "internal_id"}},
				UpdateAll: true,
			}).
			Create(model).Error; err != nil {
			return fmt.Errorf("entity upsert failed: %w", err)
		}

		if err := tx.Where("entity_internal_id = ?", model.InternalID).
			Delete(&IdentifierModel{}).Error; err != nil {
			return fmt.Errorf("identifier cleanup failed: %w", err)
		}

		if len(model.Identifiers) > 0 {
			if err := tx.Create(&model.Identifiers).Error; err != nil {
				return fmt.Errorf("identifier insert failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entity saved",
		zap.String("internal_id", model.InternalID),
		zap.String("kind", model.Kind),
		zap.Int("identifiers", len(model.Identifiers)))

	return toEntity(model), nil
}
