// Package counterparties exposes the HTTP surface for counterparty
// reconciliation: submitting vendor records and looking up resolved legal
// entities by internal id.
package counterparties
