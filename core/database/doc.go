// Package database manages the entity store connection.
//
// It wraps GORM with connection pooling, DSN construction (including URL
// encoding of credentials), and strict connect/read/write timeouts. MySQL
// is the production driver; SQLite is supported for local runs and tests.
//
// The inspector verifies at startup that the entity and identifier tables
// carry the columns the reconciliation repositories query, so schema drift
// fails fast rather than mid-batch.
package database
