// Package storage defines the import-directory file abstraction.
package storage

import "time"

// FileMeta describes one Markdown file in the import directory.
type FileMeta struct {
	Path      string // relative to the import root
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for import-directory file operations.
// Paths are always relative to the import root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
