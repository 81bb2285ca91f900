// Package server holds the HTTP server configuration.
//
// The main application entry point handles server startup; this package only
// defines the configuration structure embedded by core/config: the listen
// port and the API key guarding the reconciliation endpoints.
package server
