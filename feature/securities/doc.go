// Package securities exposes the HTTP surface for security reconciliation:
// submitting vendor records and looking up resolved securities by internal id.
package securities
