// Package fsck checks a vault exhaustively: every file is visited and
// every note name decoded, with no pruning.
package fsck

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/starford/nnote/internal/ignore"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/storage"
)

// Kind classifies an issue.
type Kind string

const (
	// KindCorrupt is a file named like a note whose identifier does not decode.
	KindCorrupt Kind = "corrupt"
	// KindMisfiled is a note file outside the bucket its identifier maps to.
	KindMisfiled Kind = "misfiled"
	// KindOrphan is an attribute sidecar with no note file beside it.
	KindOrphan Kind = "orphan"
	// KindStray is any other file.
	KindStray Kind = "stray"
)

// Issue is one finding. Paths are vault-relative with forward slashes.
type Issue struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
	// Want is where a misfiled file belongs.
	Want string `json:"want,omitempty"`
	Err  error  `json:"-"`
}

func (i Issue) String() string {
	switch {
	case i.Want != "":
		return fmt.Sprintf("%s: %s (want %s)", i.Kind, i.Path, i.Want)
	case i.Err != nil:
		return fmt.Sprintf("%s: %s: %v", i.Kind, i.Path, i.Err)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Path)
}

// Report is the outcome of a Scan.
type Report struct {
	// Notes holds every decodable note, in identifier order.
	Notes  []models.Note
	Issues []Issue
	Files  int
}

type leaf struct {
	dir, name string
}

// Option tunes a Scan.
type Option func(*scanOptions)

type scanOptions struct {
	ignore *ignore.Matcher
}

// WithIgnore skips files and directories matched by m. Skipped entries
// are neither counted nor reported.
func WithIgnore(m *ignore.Matcher) Option {
	return func(o *scanOptions) { o.ignore = m }
}

// Scan walks the whole vault under l.Root in parallel.
func Scan(ctx context.Context, l layout.Layout, logger *slog.Logger, opts ...Option) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o scanOptions
	for _, opt := range opts {
		opt(&o)
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return nil, fmt.Errorf("fsck: resolve root: %w", err)
	}

	var (
		mu    sync.Mutex
		files []leaf
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && o.ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		mu.Lock()
		files = append(files, leaf{dir: path.Dir(rel), name: path.Base(rel)})
		mu.Unlock()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return &Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fsck: walk %s: %w", root, err)
	}

	r := check(l, files)
	logger.Debug("fsck: scanned",
		slog.Int("files", r.Files),
		slog.Int("notes", len(r.Notes)),
		slog.Int("issues", len(r.Issues)))
	return r, nil
}

func check(l layout.Layout, files []leaf) *Report {
	r := &Report{Files: len(files)}
	notes := map[nnid.ID]*models.Note{}
	// Directories holding at least one file of each identifier.
	present := map[string]bool{}
	var sidecars []leaf

	for _, f := range files {
		raw, ext, ok := layout.ParseLeaf(f.name)
		if !ok {
			if nnid.Valid(f.name) {
				sidecars = append(sidecars, f)
			} else {
				r.Issues = append(r.Issues, Issue{Kind: KindStray, Path: join(f.dir, f.name)})
			}
			continue
		}
		id, err := nnid.Parse(raw)
		if err != nil {
			r.Issues = append(r.Issues, Issue{Kind: KindCorrupt, Path: join(f.dir, f.name), Err: err})
			continue
		}
		present[join(f.dir, raw)] = true
		if !l.Placed(f.dir, id) {
			r.Issues = append(r.Issues, Issue{
				Kind: KindMisfiled,
				Path: join(f.dir, f.name),
				Want: filepath.ToSlash(l.RelPath(id, ext)),
			})
		}
		n, ok := notes[id]
		if !ok {
			n = &models.Note{ID: id}
			notes[id] = n
		}
		n.Exts = append(n.Exts, ext)
	}

	for _, f := range sidecars {
		raw := strings.ToLower(f.name)
		id, err := nnid.Parse(raw)
		switch {
		case err != nil:
			r.Issues = append(r.Issues, Issue{Kind: KindCorrupt, Path: join(f.dir, f.name), Err: err})
		case !present[join(f.dir, raw)]:
			r.Issues = append(r.Issues, Issue{Kind: KindOrphan, Path: join(f.dir, f.name)})
		case !l.Placed(f.dir, id):
			r.Issues = append(r.Issues, Issue{
				Kind: KindMisfiled,
				Path: join(f.dir, f.name),
				Want: filepath.ToSlash(l.RelMetaPath(id)),
			})
		}
	}

	for _, n := range notes {
		slices.Sort(n.Exts)
		n.Exts = slices.Compact(n.Exts)
		r.Notes = append(r.Notes, *n)
	}
	slices.SortFunc(r.Notes, func(a, b models.Note) int { return a.ID.Compare(b.ID) })
	slices.SortFunc(r.Issues, func(a, b Issue) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), strings.Compare(string(a.Kind), string(b.Kind)))
	})
	return r
}

func join(dir, name string) string {
	return path.Join(dir, name)
}

// Fix moves every misfiled file to where it belongs and returns how many
// were moved. A destination that already exists is left alone.
func Fix(ctx context.Context, store storage.Provider, r *Report, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	moved := 0
	for _, issue := range r.Issues {
		if issue.Kind != KindMisfiled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return moved, err
		}
		if _, err := store.Stat(issue.Want); err == nil {
			logger.Warn("fsck: destination exists", slog.String("path", issue.Path), slog.String("want", issue.Want))
			continue
		}
		if err := store.Move(issue.Path, issue.Want); err != nil {
			return moved, fmt.Errorf("fsck: move %s: %w", issue.Path, err)
		}
		logger.Info("fsck: moved", slog.String("from", issue.Path), slog.String("to", issue.Want))
		moved++
	}
	return moved, nil
}
