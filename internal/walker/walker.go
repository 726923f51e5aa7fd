// Package walker iterates the notes of a vault in identifier order.
//
// A Walker is a resumable traversal: each call to Next lists at most the
// directories it needs to reach the next matching note, and state between
// calls is the cursor (the bucket directories entered so far) plus one
// stack of unvisited entries per depth. Bucket directories that cannot
// hold a note inside the since/until bounds are never listed.
//
//	w := walker.New(l, walker.WithLister(fsys), walker.WithReverse(true))
//	for w.Next() {
//		fmt.Println(w.Index(), w.Note().ID)
//	}
//	if err := w.Err(); err != nil {
//		return err
//	}
package walker

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"syscall"

	"github.com/starford/nnote/internal/content"
	"github.com/starford/nnote/internal/filter"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/meta"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/storage"
)

type opener interface {
	Open(path string) (io.ReadCloser, error)
}

// entry is a bucket directory name, or at the leaf level an identifier
// with the extensions filed under it. Leaf identifiers are lower case;
// files and sidecar keep the names as listed.
type entry struct {
	name    string
	exts    []string
	files   map[string]string // ext -> file name
	sidecar string
}

// Walker yields the notes of a vault that pass its filters.
type Walker struct {
	layout    layout.Layout
	lister    storage.Lister
	open      content.Opener
	meta      meta.Loader
	logger    *slog.Logger
	onCorrupt func(*CorruptEntryError)

	since, until *nnid.ID
	reverse      bool
	window       filter.Window
	sel, exc     filter.Filters
	grep         *content.Matcher

	// len(stacks) == len(cursor)+1 once started. Each stack is kept in
	// reverse visiting order so the next entry is popped off the end.
	cursor []string
	stacks [][]entry

	started bool
	done    bool
	ordinal int
	note    models.Note
	index   int
	corrupt int
	err     error
}

// New returns a Walker over the vault placed by l. Without WithLister it
// reads the directory tree under l.Root.
func New(l layout.Layout, opts ...Option) *Walker {
	w := &Walker{layout: l}
	for _, opt := range opts {
		opt(w)
	}
	if w.lister == nil {
		dir := dirFS{os.DirFS(l.Root)}
		w.lister = dir
		if w.open == nil {
			w.open = dir.Open
		}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.onCorrupt == nil {
		w.onCorrupt = func(e *CorruptEntryError) {
			w.logger.Warn("walker: corrupt entry",
				slog.String("path", e.Path),
				slog.String("error", e.Err.Error()))
		}
	}
	return w
}

// Next advances to the next matching note inside the index window. It
// returns false when the walk is over or failed; check Err.
func (w *Walker) Next() bool {
	if w.done || w.err != nil {
		return false
	}
	if !w.started {
		w.started = true
		if err := w.check(); err != nil {
			w.err = err
			return false
		}
		if !w.push() {
			return false
		}
	}
	for {
		depth := len(w.cursor)
		top := w.stacks[depth]
		if len(top) == 0 {
			if depth == 0 {
				w.done = true
				return false
			}
			w.cursor = w.cursor[:depth-1]
			w.stacks = w.stacks[:depth]
			continue
		}
		e := top[len(top)-1]
		w.stacks[depth] = top[:len(top)-1]

		if depth < w.layout.Cut {
			if !w.inBounds(append(w.cursor, e.name)) {
				continue
			}
			w.cursor = append(w.cursor, e.name)
			if !w.push() {
				return false
			}
			continue
		}

		n, ok := w.match(e)
		if w.err != nil {
			return false
		}
		if !ok {
			continue
		}
		w.ordinal++
		surfaced := w.window.Contains(w.ordinal)
		if w.window.Done(w.ordinal) {
			w.done = true
		}
		if surfaced {
			w.note = n
			w.index = w.ordinal
			return true
		}
		if w.done {
			return false
		}
	}
}

// Note returns the note found by the last successful Next.
func (w *Walker) Note() models.Note {
	return w.note
}

// Index returns the match ordinal of the current note, starting at 1.
func (w *Walker) Index() int {
	return w.index
}

// Err returns the error that stopped the walk, if any. Corrupt entries
// do not stop a walk and are not reported here.
func (w *Walker) Err() error {
	return w.err
}

// Corrupt returns the number of corrupt entries met so far.
func (w *Walker) Corrupt() int {
	return w.corrupt
}

// All returns an iterator over the remaining notes. Check Err afterwards.
func (w *Walker) All() iter.Seq[models.Note] {
	return func(yield func(models.Note) bool) {
		for w.Next() {
			if !yield(w.Note()) {
				return
			}
		}
	}
}

func (w *Walker) check() error {
	if w.grep != nil && w.open == nil {
		return errors.New("walker: content filter needs an opener")
	}
	if w.meta == nil && (len(w.sel.Attributes) > 0 || len(w.exc.Attributes) > 0) {
		return errors.New("walker: metadata filters need a meta loader")
	}
	return nil
}

func (w *Walker) dir() string {
	if len(w.cursor) == 0 {
		return "."
	}
	return path.Join(w.cursor...)
}

// push lists the directory at the cursor and pushes its entries.
func (w *Walker) push() bool {
	dir := w.dir()
	names, err := w.lister.ReadDirNames(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
		w.err = fmt.Errorf("walker: list %s: %w", dir, err)
		return false
	}
	var level []entry
	if depth := len(w.cursor); depth < w.layout.Cut {
		level = buckets(depth, names)
	} else {
		level = leaves(names)
	}
	// Popped from the end: descending order walks forward.
	if !w.reverse {
		slices.Reverse(level)
	}
	w.stacks = append(w.stacks, level)
	return true
}

// buckets keeps the well-formed bucket names of one level, sorted.
func buckets(depth int, names []string) []entry {
	out := make([]entry, 0, len(names))
	for _, name := range names {
		if layout.MatchComponent(depth, name) {
			out = append(out, entry{name: name})
		}
	}
	slices.SortFunc(out, func(a, b entry) int { return strings.Compare(a.name, b.name) })
	return out
}

// leaves groups note files by identifier, sorted by identifier, each
// with its sorted extensions.
func leaves(names []string) []entry {
	byID := make(map[string]*entry)
	sidecars := make(map[string]string)
	for _, name := range names {
		id, ext, ok := layout.ParseLeaf(name)
		if !ok {
			if nnid.Valid(name) {
				sidecars[strings.ToLower(name)] = name
			}
			continue
		}
		e := byID[id]
		if e == nil {
			e = &entry{name: id, files: make(map[string]string)}
			byID[id] = e
		}
		e.exts = append(e.exts, ext)
		e.files[ext] = name
	}
	out := make([]entry, 0, len(byID))
	for id, e := range byID {
		slices.Sort(e.exts)
		e.exts = slices.Compact(e.exts)
		e.sidecar = sidecars[id]
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b entry) int { return strings.Compare(a.name, b.name) })
	return out
}

// inBounds reports whether the bucket named by components could hold a
// note between since and until: both bounds are projected onto the same
// date fields and compared.
func (w *Walker) inBounds(components []string) bool {
	tuple := make([]int, len(components))
	for level, c := range components {
		v, err := layout.ParseComponent(level, c)
		if err != nil {
			return false
		}
		tuple[level] = v
	}
	if w.since != nil && slices.Compare(project(*w.since, len(tuple)), tuple) > 0 {
		return false
	}
	if w.until != nil && slices.Compare(tuple, project(*w.until, len(tuple))) > 0 {
		return false
	}
	return true
}

func project(id nnid.ID, depth int) []int {
	f := layout.Fields(id.Time)
	return f[:depth]
}

// match decodes a leaf entry and applies every filter. It sets w.err on
// I/O failures.
func (w *Walker) match(e entry) (models.Note, bool) {
	id, err := nnid.Parse(e.name)
	if err != nil {
		w.corrupt++
		w.onCorrupt(&CorruptEntryError{Path: path.Join(w.dir(), e.files[e.exts[0]]), Err: err})
		return models.Note{}, false
	}
	if w.since != nil && id.Compare(*w.since) < 0 {
		return models.Note{}, false
	}
	if w.until != nil && id.Compare(*w.until) > 0 {
		return models.Note{}, false
	}

	exts := w.narrow(e.exts)
	if len(exts) == 0 {
		return models.Note{}, false
	}
	n := models.Note{ID: id, Exts: exts}

	if len(w.sel.Attributes) > 0 || len(w.exc.Attributes) > 0 {
		var sidecar string
		if e.sidecar != "" {
			sidecar = path.Join(w.dir(), e.sidecar)
		}
		store, err := w.meta.Load(n, sidecar)
		if err != nil {
			w.err = fmt.Errorf("walker: %w", err)
			return models.Note{}, false
		}
		if len(w.sel.Attributes) > 0 && !slices.ContainsFunc(w.sel.Attributes, store.Select) {
			return models.Note{}, false
		}
		if slices.ContainsFunc(w.exc.Attributes, store.Select) {
			return models.Note{}, false
		}
	}

	var files []content.File
	if w.grep != nil {
		files = make([]content.File, len(exts))
		for i, ext := range exts {
			files[i] = content.File{Ext: ext, Path: path.Join(w.dir(), e.files[ext])}
		}
	}
	ok, err := w.grep.Match(w.open, files)
	if err != nil {
		w.err = fmt.Errorf("walker: %w", err)
		return models.Note{}, false
	}
	return n, ok
}

// narrow applies the extension filters: select keeps only the listed
// extensions, exclude drops them.
func (w *Walker) narrow(exts []string) []string {
	if len(w.sel.Extensions) == 0 && len(w.exc.Extensions) == 0 {
		return exts
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if len(w.sel.Extensions) > 0 && !w.sel.HasExtension(ext) {
			continue
		}
		if w.exc.HasExtension(ext) {
			continue
		}
		out = append(out, ext)
	}
	return out
}

// dirFS lists and opens files of an fs.FS.
type dirFS struct {
	fsys fs.FS
}

func (d dirFS) ReadDirNames(dir string) ([]string, error) {
	entries, err := fs.ReadDir(d.fsys, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (d dirFS) Open(name string) (io.ReadCloser, error) {
	return d.fsys.Open(name)
}
