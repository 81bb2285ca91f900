// Package middleware groups the HTTP middleware used by the API surface:
// ray-id correlation (middleware/rayid) and API-key authentication
// (middleware/auth).
package middleware
