package store

import (
	"context"
	"errors"
	"testing"

	"refdata-manager/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func entityColumns() []string {
	return []string{
		"internal_id", "kind", "name", "status",
		"security_type", "currency", "market", "issuer", "is_basket",
		"counterparty_type", "country", "sector",
		"canonical_type", "canonical_value",
	}
}

func identifierColumns() []string {
	return []string{"id", "entity_internal_id", "id_type", "id_value", "source", "is_primary"}
}

func TestFindCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	entityRows := sqlmock.NewRows(entityColumns()).
		AddRow("IMS-ISIN-US0378331005", "SECURITY", "Apple Inc", "ACTIVE",
			"EQUITY", "USD", "XNAS", "", false,
			"", "", "",
			"ISIN", "US0378331005")
	mock.ExpectQuery("SELECT \\* FROM `entities`").WillReturnRows(entityRows)

	idRows := sqlmock.NewRows(identifierColumns()).
		AddRow(1, "IMS-ISIN-US0378331005", "ISIN", "US0378331005", "BLOOMBERG", true).
		AddRow(2, "IMS-ISIN-US0378331005", "TICKER", "AAPL", "BLOOMBERG", true)
	mock.ExpectQuery("SELECT \\* FROM `entity_identifiers`").WillReturnRows(idRows)

	hints := []reconcile.RecordIdentifier{
		{Type: reconcile.TypeISIN, Value: "US0378331005"},
		{Type: reconcile.TypeTicker, Value: "AAPL"},
	}
	entities, err := s.FindCandidates(context.Background(), reconcile.KindSecurity, hints)
	require.NoError(t, err)
	require.Len(t, entities, 1)

	e := entities[0]
	assert.Equal(t, "IMS-ISIN-US0378331005", e.InternalID)
	assert.Equal(t, reconcile.KindSecurity, e.Kind)
	assert.Equal(t, "Apple Inc", e.Name)
	assert.Equal(t, reconcile.TypeISIN, e.CanonicalType)
	require.Len(t, e.Identifiers, 2)
	assert.True(t, e.HasIdentifier(reconcile.TypeTicker, "AAPL"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCandidatesNoHints(t *testing.T) {
	db, _ := setupMockDB(t)
	s := NewStore(db, nil)

	entities, err := s.FindCandidates(context.Background(), reconcile.KindSecurity, nil)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestFindCandidatesNoMatch(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	mock.ExpectQuery("SELECT \\* FROM `entities`").
		WillReturnRows(sqlmock.NewRows(entityColumns()))

	hints := []reconcile.RecordIdentifier{{Type: reconcile.TypeISIN, Value: "DE0005557508"}}
	entities, err := s.FindCandidates(context.Background(), reconcile.KindSecurity, hints)
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	entityRows := sqlmock.NewRows(entityColumns()).
		AddRow("IMS-LEI-7LTWFZYICNSX8D621K86", "COUNTERPARTY", "Deutsche Bank AG", "ACTIVE",
			"", "", "", "", false,
			"BANK", "DE", "FINANCIALS",
			"LEI", "7LTWFZYICNSX8D621K86")
	mock.ExpectQuery("SELECT \\* FROM `entities`").WillReturnRows(entityRows)

	idRows := sqlmock.NewRows(identifierColumns()).
		AddRow(1, "IMS-LEI-7LTWFZYICNSX8D621K86", "LEI", "7LTWFZYICNSX8D621K86", "MARKIT", true)
	mock.ExpectQuery("SELECT \\* FROM `entity_identifiers`").WillReturnRows(idRows)

	e, err := s.Get(context.Background(), reconcile.KindCounterparty, "IMS-LEI-7LTWFZYICNSX8D621K86")
	require.NoError(t, err)
	assert.Equal(t, "Deutsche Bank AG", e.Name)
	assert.Equal(t, "BANK", e.CounterpartyType)
	require.Len(t, e.Identifiers, 1)
	assert.True(t, e.Identifiers[0].Primary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	mock.ExpectQuery("SELECT \\* FROM `entities`").
		WillReturnRows(sqlmock.NewRows(entityColumns()))

	_, err := s.Get(context.Background(), reconcile.KindSecurity, "IMS-MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `entities`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM `entity_identifiers`").
		WithArgs("IMS-ISIN-US0378331005").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `entity_identifiers`").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	entity := &reconcile.Entity{
		InternalID:     "IMS-ISIN-US0378331005",
		Kind:           reconcile.KindSecurity,
		Name:           "Apple Inc",
		Status:         "ACTIVE",
		SecurityType:   "EQUITY",
		Currency:       "USD",
		CanonicalType:  reconcile.TypeISIN,
		CanonicalValue: "US0378331005",
		Identifiers: []reconcile.Identifier{
			{Type: reconcile.TypeISIN, Value: "US0378331005", Source: "REUTERS", Primary: true},
			{Type: reconcile.TypeTicker, Value: "AAPL", Source: "BLOOMBERG", Primary: true},
		},
	}

	saved, err := s.Save(context.Background(), entity)
	require.NoError(t, err)
	assert.Equal(t, "IMS-ISIN-US0378331005", saved.InternalID)
	require.Len(t, saved.Identifiers, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUpsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `entities`").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	entity := &reconcile.Entity{
		InternalID: "IMS-ISIN-US0378331005",
		Kind:       reconcile.KindSecurity,
	}

	_, err := s.Save(context.Background(), entity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity upsert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
