// Package noteid generates and validates note identifiers.
//
// Identifiers are ULIDs: opaque to every caller, unique, and
// lexicographically sortable by creation time, which keeps the default
// list ordering stable without an extra column.
package noteid

import "github.com/oklog/ulid/v2"

// New returns a fresh note identifier.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s parses as a note identifier.
// The lookup path does not require this (an unknown id simply resolves to
// nothing), but write paths reject malformed ids early.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
