// Package store is the database persistence layer for reconciled entities.
//
// Entities live in the 'entities' table; every identifier ever accepted for
// an entity, including retained vendor disagreements, lives in
// 'entity_identifiers'. Candidate lookups for matching go through the
// (id_type, id_value) index on the identifier table.
package store
