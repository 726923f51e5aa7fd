// Package models defines the domain types for nnote.
package models

import (
	"slices"
	"strings"

	"github.com/starford/nnote/internal/nnid"
)

// ExtensionMarker prefixes attribute keys that select file extensions
// rather than metadata.
const ExtensionMarker = "."

// Note is one timestamped document, possibly stored as several files that
// share an identifier and differ only in extension.
type Note struct {
	ID   nnid.ID  `json:"id"`
	Exts []string `json:"exts,omitempty"` // sorted, e.g. [".jpg", ".txt"]
}

// HasExt reports whether the note carries a file with the given extension.
func (n Note) HasExt(ext string) bool {
	_, found := slices.BinarySearch(n.Exts, ext)
	return found
}

// Abstract reports whether the note has no files. Abstract notes are used
// as range bounds.
func (n Note) Abstract() bool {
	return len(n.Exts) == 0
}

// Attribute is a key with an optional value. An empty Value means the
// attribute is a key-only flag (or, as a filter, "key present").
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// IsExtension reports whether the key names a file extension.
func (a Attribute) IsExtension() bool {
	return strings.HasPrefix(a.Key, ExtensionMarker)
}

// String renders key or key=value.
func (a Attribute) String() string {
	if a.Value == "" {
		return a.Key
	}
	return a.Key + "=" + a.Value
}
