// Package logger provides a structured logging facility based on Zap.
//
// Conflict resolution is only trustworthy if every overwrite is auditable,
// so the engine logs each decided conflict at INFO with both competing
// values and the winning source. This package configures the logger those
// entries flow through.
//
// # Correlation
//
// WithRayID attaches the per-request ray_id from the Fiber context so logs
// for one HTTP request can be correlated. WithBatch tags a logger with the
// batch id and vendor source during file ingestion, tying conflict
// decisions back to the vendor file that triggered them.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
package logger
