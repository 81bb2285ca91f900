// Package utils provides type-coercion helpers for vendor file parsing,
// where the same attribute arrives as a string from one vendor and a number
// or boolean from another.
package utils
