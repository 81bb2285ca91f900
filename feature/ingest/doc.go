// Package ingest runs vendor batch files through the resolution engine.
//
// A batch is one file from one vendor describing one entity kind, encoded as
// CSV or JSON. Records fan out over a bounded worker pool; per-entity
// serialization is guaranteed by the engine itself, so a batch can safely
// contain several records for the same instrument. Bad records are counted
// and reported per batch, never aborting it.
package ingest
