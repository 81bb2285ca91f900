package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_InvalidMySQL(t *testing.T) {
	cfg := Config{
		Host:           "localhost",
		Port:           9999, // unused port
		User:           "root",
		Password:       "wrongpassword",
		Name:           "refdata",
		TimeoutSeconds: 1,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestConnect_SQLiteInMemory(t *testing.T) {
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
}
