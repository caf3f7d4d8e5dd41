// Package models defines the domain types for Laguz.
package models

import "time"

// Note is a text record identified by an opaque unique ID.
// Content is stored verbatim: whitespace, indentation, and trailing
// newlines survive every round trip through the repository.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Checksum   string    `json:"checksum"`
	SourcePath string    `json:"source_path,omitempty"` // non-empty when imported from a file
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
