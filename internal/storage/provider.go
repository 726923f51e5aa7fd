// Package storage defines the vault file-system abstraction.
package storage

import (
	"io"
	"io/fs"
)

// Lister lists the entry names of a directory. A missing directory
// reports an error matching fs.ErrNotExist.
type Lister interface {
	ReadDirNames(dir string) ([]string, error)
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root; "" and "." name the root itself.
type Provider interface {
	Lister
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parent directories.
	Move(oldPath, newPath string) error
	// Stat describes the file at path.
	Stat(path string) (fs.FileInfo, error)
}
