// Package meta stores per-note attributes in a YAML sidecar file that
// sits next to the note's files and shares its identifier.
package meta

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/storage"
)

// Store is the attribute set of one note.
type Store interface {
	// Select reports whether the key is present and, when a.Value is
	// set, whether its value equals a.Value.
	Select(a models.Attribute) bool
	// Remove deletes the key when Select(a) holds.
	Remove(a models.Attribute)
	// Assign sets the key to a.Value.
	Assign(a models.Attribute) error
	// Attributes returns the set sorted by key.
	Attributes() []models.Attribute
	// Save persists pending changes.
	Save() error
}

// Loader opens the attribute store of a note. sidecar is the
// vault-relative sidecar path as found on disk, or "" for the place the
// layout assigns.
type Loader interface {
	Load(n models.Note, sidecar string) (Store, error)
}

// Files is the storage a Record needs.
type Files interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Delete(path string) error
}

// FileLoader loads sidecar records through a storage provider.
type FileLoader struct {
	files  Files
	layout layout.Layout
}

var _ Loader = (*FileLoader)(nil)

// NewLoader returns a Loader reading sidecars from files as placed by l.
func NewLoader(files Files, l layout.Layout) *FileLoader {
	return &FileLoader{files: files, layout: l}
}

// Load reads the note's sidecar. A missing sidecar is an empty set.
func (l *FileLoader) Load(n models.Note, sidecar string) (Store, error) {
	return l.RecordAt(n, sidecar)
}

// Record reads the sidecar at the place the layout assigns.
func (l *FileLoader) Record(n models.Note) (*Record, error) {
	return l.RecordAt(n, "")
}

// RecordAt reads the sidecar at path, or at the layout's place when path
// is empty. Save writes back to the same path.
func (l *FileLoader) RecordAt(n models.Note, path string) (*Record, error) {
	if path == "" {
		path = l.layout.RelMetaPath(n.ID)
	}
	r := &Record{files: l.files, path: path, attrs: map[string]string{}}
	data, err := l.files.Read(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("meta: load %s: %w", r.path, err)
	}
	if err := yaml.Unmarshal(data, &r.attrs); err != nil {
		return nil, fmt.Errorf("meta: decode %s: %w", r.path, err)
	}
	if r.attrs == nil {
		r.attrs = map[string]string{}
	}
	return r, nil
}

// Record is a Store persisted as a YAML mapping of key to value.
type Record struct {
	files Files
	path  string
	attrs map[string]string
	dirty bool
}

var _ Store = (*Record)(nil)

// Path returns the vault-relative sidecar path.
func (r *Record) Path() string {
	return r.path
}

func (r *Record) Select(a models.Attribute) bool {
	v, ok := r.attrs[a.Key]
	if !ok {
		return false
	}
	return a.Value == "" || v == a.Value
}

func (r *Record) Remove(a models.Attribute) {
	if !r.Select(a) {
		return
	}
	delete(r.attrs, a.Key)
	r.dirty = true
}

// Assign rejects keys that start with the extension marker; those name
// files, not attributes.
func (r *Record) Assign(a models.Attribute) error {
	if a.Key == "" || a.IsExtension() {
		return fmt.Errorf("%w: cannot assign %q", apperr.ErrInvalidFilterSyntax, a.String())
	}
	if v, ok := r.attrs[a.Key]; ok && v == a.Value {
		return nil
	}
	r.attrs[a.Key] = a.Value
	r.dirty = true
	return nil
}

func (r *Record) Attributes() []models.Attribute {
	out := make([]models.Attribute, 0, len(r.attrs))
	for k, v := range r.attrs {
		out = append(out, models.Attribute{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b models.Attribute) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// Save writes the record, or removes the sidecar once the set is empty.
func (r *Record) Save() error {
	if !r.dirty {
		return nil
	}
	if len(r.attrs) == 0 {
		if err := r.files.Delete(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("meta: delete %s: %w", r.path, err)
		}
		r.dirty = false
		return nil
	}
	data, err := yaml.Marshal(r.attrs)
	if err != nil {
		return fmt.Errorf("meta: encode %s: %w", r.path, err)
	}
	if err := r.files.Write(r.path, data); err != nil {
		return fmt.Errorf("meta: save %s: %w", r.path, err)
	}
	r.dirty = false
	return nil
}

var _ Files = (*storage.FS)(nil)
