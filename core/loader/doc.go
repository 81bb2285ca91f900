// Package loader wires application features onto the HTTP server.
//
// Each feature (securities, counterparties, ingest) implements the Feature
// interface and registers its own routes. The Manager loads every enabled
// feature at startup; a feature missing a dependency disables itself rather
// than failing the whole server.
package loader
