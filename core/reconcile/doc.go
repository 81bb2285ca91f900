// Package reconcile implements the identity-resolution and
// conflict-resolution engine for vendor reference data.
//
// Multiple external vendors report on the same real-world securities and
// counterparties and routinely disagree. The engine turns each parsed
// vendor record into exactly one internally-consistent entity by:
//
//  1. Validating identifier formats and required fields, accumulating every
//     violation into a field-level error list.
//  2. Matching the record to an existing entity by identifier value, trying
//     schemes in canonical type order (ISIN first).
//  3. Arbitrating attribute and identifier disagreements with a
//     source-priority table: the most trusted vendor's value holds the
//     current slot, and outranked values are retained as non-primary
//     identifiers rather than discarded.
//  4. Deriving a stable internal identifier that never changes once set.
//
// # Components
//
// ValidateIdentifier and DetectIdentifierType are pure lexical checks over
// single values. Matcher, Resolver and Assigner are pure decision functions
// over in-memory entities. Service is the only component with side effects:
// it drives the per-record state machine
//
//	RECEIVED -> VALIDATED -> {MATCHED, NOT_MATCHED} -> MERGED
//	         -> IDENTITY_ASSIGNED -> EMITTED
//
// with REJECTED reachable from validation, persisting through an
// EntityStore and emitting change events through a Publisher.
//
// # Concurrency
//
// The decision functions are stateless and safe to call in parallel. The
// service serializes the match/merge/assign span per entity key (every
// identifier on the record) with a keyed mutex, so records for different
// entities proceed fully in parallel while two records naming the same
// entity never interleave.
//
// # Policy
//
// Source ranks and the canonical type order are immutable configuration
// injected at construction, so tests can exercise different arbitration
// policies without touching process state. See DefaultPolicy for the
// production table.
package reconcile
