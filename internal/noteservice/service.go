// Package noteservice implements note operations on top of the vault:
// creating, reading, querying, tagging and deleting notes.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/checksum"
	"github.com/starford/nnote/internal/content"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/meta"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/parser"
	"github.com/starford/nnote/internal/storage"
	"github.com/starford/nnote/internal/walker"
)

// FileInfo describes one file of a note.
type FileInfo struct {
	Ext      string    `json:"ext"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	ID         nnid.ID            `json:"id"`
	Time       time.Time          `json:"time"`
	Files      []FileInfo         `json:"files"`
	Attributes []models.Attribute `json:"attributes"`
	Summary    string             `json:"summary"`
	Content    string             `json:"content,omitempty"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Index      int                `json:"index"`
	ID         nnid.ID            `json:"id"`
	Time       time.Time          `json:"time"`
	Exts       []string           `json:"exts"`
	Attributes []models.Attribute `json:"attributes"`
	Summary    string             `json:"summary"`
}

// Service coordinates the vault layout, its files and their attributes.
type Service struct {
	store  storage.Provider
	layout layout.Layout
	meta   *meta.FileLoader
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new note service. Date specs in queries are read
// in loc.
func NewService(store storage.Provider, l layout.Layout, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		layout: l,
		meta:   meta.NewLoader(store, l),
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Layout returns the vault layout.
func (s *Service) Layout() layout.Layout {
	return s.layout
}

// Store returns the vault storage.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Location returns the zone date specs are read in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Walker builds a walker for q over the vault.
func (s *Service) Walker(q Query, opts ...walker.Option) (*walker.Walker, error) {
	qopts, err := q.Options(s.loc)
	if err != nil {
		return nil, err
	}
	base := []walker.Option{
		walker.WithLister(s.store),
		walker.WithMeta(s.meta),
		walker.WithLogger(s.logger),
	}
	return walker.New(s.layout, slices.Concat(base, qopts, opts)...), nil
}

// Query returns the notes selected by q.
func (s *Service) Query(ctx context.Context, q Query) ([]NoteListItem, error) {
	w, err := s.Walker(q)
	if err != nil {
		return nil, err
	}
	items := []NoteListItem{}
	for w.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := s.Item(w.Index(), w.Note())
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Item describes n, found at match ordinal index, for listings.
func (s *Service) Item(index int, n models.Note) (NoteListItem, error) {
	attrs, err := s.Attributes(n)
	if err != nil {
		return NoteListItem{}, err
	}
	return NoteListItem{
		Index:      index,
		ID:         n.ID,
		Time:       n.ID.Time,
		Exts:       n.Exts,
		Attributes: attrs,
		Summary:    s.Summary(n),
	}, nil
}

// Attributes returns the stored attributes of n.
func (s *Service) Attributes(n models.Note) ([]models.Attribute, error) {
	rec, err := s.meta.Record(n)
	if err != nil {
		return nil, err
	}
	return rec.Attributes(), nil
}

// Summary returns the title line of the note's first text file, or ""
// when it has none.
func (s *Service) Summary(n models.Note) string {
	data, _, err := s.firstText(n)
	if err != nil {
		return ""
	}
	return parser.Summary(data)
}

func (s *Service) firstText(n models.Note) ([]byte, string, error) {
	for _, ext := range n.Exts {
		if !content.IsText(ext) {
			continue
		}
		data, err := s.store.Read(s.relPath(n.ID, ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return data, ext, err
	}
	return nil, "", fs.ErrNotExist
}

// Text returns the first text file of a note and its extension.
func (s *Service) Text(ctx context.Context, id nnid.ID) ([]byte, string, error) {
	n, err := s.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, ext, err := s.firstText(n)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("note %s has no text file: %w", id, apperr.ErrNotFound)
	}
	return data, ext, err
}

// Find returns the note with the given identifier and all its files.
func (s *Service) Find(_ context.Context, id nnid.ID) (models.Note, error) {
	dir := s.relDir(id)
	names, err := s.store.ReadDirNames(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.Note{}, err
	}
	want := id.String()
	n := models.Note{ID: id}
	for _, name := range names {
		if raw, ext, ok := layout.ParseLeaf(name); ok && raw == want {
			n.Exts = append(n.Exts, ext)
		}
	}
	if len(n.Exts) == 0 {
		return models.Note{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	}
	slices.Sort(n.Exts)
	return n, nil
}

// Get reads a note with its files, attributes and text.
func (s *Service) Get(ctx context.Context, id nnid.ID) (*NoteDetail, error) {
	n, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	attrs, err := s.Attributes(n)
	if err != nil {
		return nil, err
	}
	detail := &NoteDetail{
		ID:         n.ID,
		Time:       n.ID.Time,
		Files:      make([]FileInfo, 0, len(n.Exts)),
		Attributes: attrs,
	}
	for _, ext := range n.Exts {
		fi, err := s.fileInfo(n.ID, ext)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		detail.Files = append(detail.Files, fi)
	}
	if data, _, err := s.firstText(n); err == nil {
		detail.Content = string(data)
		detail.Summary = parser.Summary(data)
	}
	return detail, nil
}

func (s *Service) fileInfo(id nnid.ID, ext string) (FileInfo, error) {
	rel := s.relPath(id, ext)
	data, err := s.store.Read(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{}, fmt.Errorf("%s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return FileInfo{}, err
	}
	info, err := s.store.Stat(rel)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Ext:      ext,
		Path:     rel,
		Size:     info.Size(),
		Checksum: checksum.Sum(data),
		ModTime:  info.ModTime(),
	}, nil
}

// Add files content as a new note stamped now, then assigns attrs.
func (s *Service) Add(ctx context.Context, ext string, data []byte, attrs ...models.Attribute) (models.Note, error) {
	if err := layout.CheckExt(ext); err != nil {
		return models.Note{}, err
	}
	if err := checkAssignable(attrs); err != nil {
		return models.Note{}, err
	}
	id := nnid.New(s.now())
	rel := s.relPath(id, ext)
	if _, err := s.store.Stat(rel); err == nil {
		return models.Note{}, fmt.Errorf("note %s: %w", id, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(rel, data); err != nil {
		return models.Note{}, err
	}
	n := models.Note{ID: id, Exts: []string{ext}}
	if len(attrs) > 0 {
		if _, err := s.tagNote(n, attrs, nil); err != nil {
			return models.Note{}, err
		}
	}
	s.logger.Debug("noteservice: added", slog.String("id", id.String()), slog.String("ext", ext))
	return n, nil
}

// ReadFile returns one file of a note.
func (s *Service) ReadFile(_ context.Context, id nnid.ID, ext string) ([]byte, error) {
	if err := layout.CheckExt(ext); err != nil {
		return nil, err
	}
	data, err := s.store.Read(s.relPath(id, ext))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("note %s%s: %w", id, ext, apperr.ErrNotFound)
	}
	return data, err
}

// Attach adds a file with a new extension to an existing note.
func (s *Service) Attach(ctx context.Context, id nnid.ID, ext string, data []byte) (FileInfo, error) {
	if err := layout.CheckExt(ext); err != nil {
		return FileInfo{}, err
	}
	n, err := s.Find(ctx, id)
	if err != nil {
		return FileInfo{}, err
	}
	if n.HasExt(ext) {
		return FileInfo{}, fmt.Errorf("note %s%s: %w", id, ext, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(s.relPath(id, ext), data); err != nil {
		return FileInfo{}, err
	}
	return s.fileInfo(id, ext)
}

// UpdateFile replaces one file of a note. When ifMatch is set it must
// name the current content, or ErrConflict is returned.
func (s *Service) UpdateFile(ctx context.Context, id nnid.ID, ext string, data []byte, ifMatch string) (FileInfo, error) {
	existing, err := s.ReadFile(ctx, id, ext)
	if err != nil {
		return FileInfo{}, err
	}
	if !checksum.Matches(existing, ifMatch) {
		return FileInfo{}, fmt.Errorf("note %s%s: %w", id, ext, apperr.ErrConflict)
	}
	if err := s.store.Write(s.relPath(id, ext), data); err != nil {
		return FileInfo{}, err
	}
	return s.fileInfo(id, ext)
}

// Delete removes every file of a note and its attributes.
func (s *Service) Delete(ctx context.Context, id nnid.ID) error {
	n, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	for _, ext := range n.Exts {
		if err := s.store.Delete(s.relPath(id, ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := s.store.Delete(s.relMetaPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	s.logger.Debug("noteservice: deleted", slog.String("id", id.String()))
	return nil
}

// TagNote removes then assigns attributes on one note and returns the
// resulting set.
func (s *Service) TagNote(ctx context.Context, id nnid.ID, assign, remove []models.Attribute) ([]models.Attribute, error) {
	n, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.tagNote(n, assign, remove)
}

// Tag removes then assigns attributes on every note selected by q and
// returns how many notes were visited.
func (s *Service) Tag(ctx context.Context, q Query, assign, remove []models.Attribute) (int, error) {
	if err := checkAssignable(assign); err != nil {
		return 0, err
	}
	w, err := s.Walker(q)
	if err != nil {
		return 0, err
	}
	count := 0
	for w.Next() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if _, err := s.tagNote(w.Note(), assign, remove); err != nil {
			return count, err
		}
		count++
	}
	return count, w.Err()
}

func (s *Service) tagNote(n models.Note, assign, remove []models.Attribute) ([]models.Attribute, error) {
	if err := checkAssignable(assign); err != nil {
		return nil, err
	}
	rec, err := s.meta.Record(n)
	if err != nil {
		return nil, err
	}
	for _, a := range remove {
		rec.Remove(a)
	}
	for _, a := range assign {
		if err := rec.Assign(a); err != nil {
			return nil, err
		}
	}
	if err := rec.Save(); err != nil {
		return nil, err
	}
	return rec.Attributes(), nil
}

func checkAssignable(attrs []models.Attribute) error {
	for _, a := range attrs {
		if a.IsExtension() {
			return fmt.Errorf("%w: cannot assign %q", apperr.ErrInvalidFilterSyntax, a.String())
		}
	}
	return nil
}

// Path returns the absolute path of one file of a note.
func (s *Service) Path(id nnid.ID, ext string) string {
	return s.layout.Path(id, ext)
}

func (s *Service) relDir(id nnid.ID) string {
	if dir := s.layout.RelDir(id); dir != "" {
		return dir
	}
	return "."
}

func (s *Service) relPath(id nnid.ID, ext string) string {
	return path.Join(s.layout.RelDir(id), id.String()+ext)
}

func (s *Service) relMetaPath(id nnid.ID) string {
	return filepath.ToSlash(s.layout.RelMetaPath(id))
}
