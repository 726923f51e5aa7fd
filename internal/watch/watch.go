// Package watch follows changes to a vault and reports them per note.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/nnote/internal/ignore"
	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/nnid"
)

// Event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Event is one change to a note file or to a note's attribute sidecar
// (Ext is empty for the sidecar).
type Event struct {
	Kind string  `json:"kind"`
	ID   nnid.ID `json:"id"`
	Ext  string  `json:"ext,omitempty"`
	Path string  `json:"path"`
}

// Callback receives events in the order they are observed.
type Callback func(Event)

type watcher struct {
	fw     *fsnotify.Watcher
	root   string
	logger *slog.Logger
	cb     Callback
	ignore *ignore.Matcher
	// known holds vault-relative paths of the note files seen so far, so
	// an atomic replace (create over an existing name) reads as an update.
	known map[string]bool
}

// Option tunes a watcher.
type Option func(*watcher)

// WithIgnore drops events for paths matched by m and never watches
// ignored directories.
func WithIgnore(m *ignore.Matcher) Option {
	return func(w *watcher) { w.ignore = m }
}

// Watch watches every directory under root until ctx is cancelled. New
// directories are added as they appear.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback, opts ...Option) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if logger == nil {
		logger = slog.Default()
	}
	w := &watcher{fw: fw, root: root, logger: logger, cb: cb, known: map[string]bool{}}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addDir(root, false); err != nil {
		return err
	}
	logger.Info("watch: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch: stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if w.ignore.Match(rel) {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addDir(ev.Name, true); err != nil {
				w.logger.Warn("watch: add new dir failed",
					slog.String("path", ev.Name),
					slog.String("error", err.Error()))
			}
			return
		}
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := KindCreated
		if w.known[rel] || ev.Op&fsnotify.Create == 0 {
			kind = KindUpdated
		}
		w.emit(kind, rel)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Rename fires on the old name only; the new name arrives as a Create.
		w.emit(KindDeleted, rel)
	}
}

func (w *watcher) emit(kind, rel string) {
	id, ext, ok := w.decode(rel)
	if !ok {
		return
	}
	switch kind {
	case KindDeleted:
		delete(w.known, rel)
	default:
		w.known[rel] = true
	}
	w.logger.Debug("watch: event", slog.String("kind", kind), slog.String("path", rel))
	if w.cb != nil {
		w.cb(Event{Kind: kind, ID: id, Ext: ext, Path: rel})
	}
}

// decode maps a vault-relative path to the note it belongs to. Sidecars
// decode with an empty extension.
func (w *watcher) decode(rel string) (nnid.ID, string, bool) {
	name := filepath.Base(rel)
	raw, ext, ok := layout.ParseLeaf(name)
	if !ok {
		if !nnid.Valid(name) {
			return nnid.ID{}, "", false
		}
		raw = strings.ToLower(name)
	}
	id, err := nnid.Parse(raw)
	if err != nil {
		w.logger.Warn("watch: corrupt entry", slog.String("path", rel), slog.String("error", err.Error()))
		return nnid.ID{}, "", false
	}
	return id, ext, true
}

// addDir watches dir and everything below it. Note files already present
// are recorded, and reported as created when announce is set.
func (w *watcher) addDir(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && w.ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.fw.Add(p)
		}
		if w.known[rel] {
			return nil
		}
		if announce {
			w.emit(KindCreated, rel)
		} else if _, _, ok := w.decode(rel); ok {
			w.known[rel] = true
		}
		return nil
	})
}
