// Package ignore matches vault-relative paths against glob patterns.
//
// A pattern without a slash is matched against the last path element, so
// "*.swp" hides swap files at any depth. A pattern with a slash is matched
// against the whole slash-separated path, where "*" stays within one
// element and "**" crosses them.
package ignore

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultPatterns hide VCS metadata, editor debris and in-flight writes.
var DefaultPatterns = []string{".git", ".hg", "*.swp", "*~", ".DS_Store", ".nnote-tmp-*"}

type rule struct {
	g    glob.Glob
	base bool
}

// Matcher is an immutable set of compiled patterns. The nil Matcher
// matches nothing.
type Matcher struct {
	rules []rule
}

// Compile builds a Matcher from patterns. Empty patterns are skipped.
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(strings.TrimPrefix(p, "/"), '/')
		if err != nil {
			return nil, fmt.Errorf("ignore: pattern %q: %w", p, err)
		}
		m.rules = append(m.rules, rule{g: g, base: !strings.Contains(p, "/")})
	}
	return m, nil
}

// Match reports whether rel, a slash-separated path relative to the vault
// root, is ignored. A path is also ignored when any of its parent
// directories is.
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	rel = strings.Trim(rel, "/")
	for p := rel; p != "." && p != ""; p = path.Dir(p) {
		if m.matchOne(p) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func (m *Matcher) matchOne(p string) bool {
	base := path.Base(p)
	for _, r := range m.rules {
		if r.base {
			if r.g.Match(base) {
				return true
			}
		} else if r.g.Match(p) {
			return true
		}
	}
	return false
}
