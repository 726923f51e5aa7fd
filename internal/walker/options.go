package walker

import (
	"log/slog"

	"github.com/starford/nnote/internal/content"
	"github.com/starford/nnote/internal/filter"
	"github.com/starford/nnote/internal/meta"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/storage"
)

// Option configures a Walker.
type Option func(*Walker)

// WithSince drops notes ordered before id.
func WithSince(id nnid.ID) Option {
	return func(w *Walker) {
		w.since = &id
	}
}

// WithUntil drops notes ordered after id.
func WithUntil(id nnid.ID) Option {
	return func(w *Walker) {
		w.until = &id
	}
}

// WithReverse walks newest first.
func WithReverse(reverse bool) Option {
	return func(w *Walker) {
		w.reverse = reverse
	}
}

// WithWindow restricts which match ordinals are yielded and caps the walk.
func WithWindow(win filter.Window) Option {
	return func(w *Walker) {
		w.window = win
	}
}

// WithSelect keeps only notes matching the filters. Extension filters
// also narrow the yielded note's extensions.
func WithSelect(f filter.Filters) Option {
	return func(w *Walker) {
		w.sel = f
	}
}

// WithExclude drops notes matching any metadata filter and hides the
// listed extensions.
func WithExclude(f filter.Filters) Option {
	return func(w *Walker) {
		w.exc = f
	}
}

// WithContent keeps only notes whose text matches m.
func WithContent(m *content.Matcher) Option {
	return func(w *Walker) {
		w.grep = m
	}
}

// WithLister sets the directory listing capability. If l can also open
// files, it is used for content matching.
func WithLister(l storage.Lister) Option {
	return func(w *Walker) {
		w.lister = l
		if o, ok := l.(opener); ok {
			w.open = o.Open
		}
	}
}

// WithOpener sets how note files are opened for content matching.
func WithOpener(open content.Opener) Option {
	return func(w *Walker) {
		w.open = open
	}
}

// WithMeta sets the attribute loader used by metadata filters.
func WithMeta(l meta.Loader) Option {
	return func(w *Walker) {
		w.meta = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = l
	}
}

// WithCorruptHandler replaces the default corrupt entry handler, which
// logs a warning.
func WithCorruptHandler(fn func(*CorruptEntryError)) Option {
	return func(w *Walker) {
		w.onCorrupt = fn
	}
}
