// Package layout maps note identities to paths inside the vault.
//
// The cut depth decides how many of {year, month, day, hour} become
// directory components:
//
//	cut 0: <root>/0007e3a1-02faf080-1c2d3e4f.txt
//	cut 2: <root>/2024/05/0007e3a1-02faf080-1c2d3e4f.txt
//
// The filename always carries the full identifier, so a note can be
// recovered from its filename alone whatever the cut depth.
package layout

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
)

// MaxCut is the deepest supported bucketing: year/month/day/hour.
const MaxCut = 4

// DefaultCut buckets notes by year and month.
const DefaultCut = 2

var (
	labels  = [MaxCut]string{"year", "month", "day", "hour"}
	widths  = [MaxCut]int{4, 2, 2, 2}
	levelRe = [MaxCut]*regexp.Regexp{
		regexp.MustCompile(`^\d{4}$`),
		regexp.MustCompile(`^\d{2}$`),
		regexp.MustCompile(`^\d{2}$`),
		regexp.MustCompile(`^\d{2}$`),
	}
	leafRe = regexp.MustCompile(`^([0-9A-Fa-f]{8}-[0-9A-Fa-f]{8}-[0-9A-Fa-f]{8})(\.\S+)$`)
	extRe  = regexp.MustCompile(`^\.[^\s/\\]+$`)
)

// Layout places notes under Root, bucketed Cut levels deep.
type Layout struct {
	Root string
	Cut  int
}

// New validates the cut depth and returns a Layout.
func New(root string, cut int) (Layout, error) {
	if cut < 0 || cut > MaxCut {
		return Layout{}, fmt.Errorf("layout: cut depth %d out of range [0,%d]", cut, MaxCut)
	}
	return Layout{Root: root, Cut: cut}, nil
}

// Label names the date field bucketed at level (0 = year).
func Label(level int) string {
	return labels[level]
}

// Fields returns year, month, day and hour of t in UTC, in bucket order.
func Fields(t time.Time) [MaxCut]int {
	t = t.UTC()
	return [MaxCut]int{t.Year(), int(t.Month()), t.Day(), t.Hour()}
}

// FormatComponent renders one bucket value zero-padded to its level width.
func FormatComponent(level, value int) string {
	return fmt.Sprintf("%0*d", widths[level], value)
}

// MatchComponent reports whether name is a well-formed bucket directory
// name for level.
func MatchComponent(level int, name string) bool {
	return levelRe[level].MatchString(name)
}

// ParseComponent returns the numeric value of a bucket directory name.
func ParseComponent(level int, name string) (int, error) {
	if !MatchComponent(level, name) {
		return 0, fmt.Errorf("layout: bad %s component %q", labels[level], name)
	}
	return strconv.Atoi(name)
}

// Components returns the bucket directory names for t.
func (l Layout) Components(t time.Time) []string {
	f := Fields(t)
	out := make([]string, l.Cut)
	for level := range l.Cut {
		out[level] = FormatComponent(level, f[level])
	}
	return out
}

// Dir returns the absolute directory holding the note's files.
func (l Layout) Dir(id nnid.ID) string {
	return filepath.Join(append([]string{l.Root}, l.Components(id.Time)...)...)
}

// RelDir returns Dir relative to Root, using forward slashes.
func (l Layout) RelDir(id nnid.ID) string {
	return strings.Join(l.Components(id.Time), "/")
}

// Path returns the file path for one extension of the note.
func (l Layout) Path(id nnid.ID, ext string) string {
	return filepath.Join(l.Dir(id), id.String()+ext)
}

// MetaPath returns the path of the note's attribute record. It has no
// extension, so it never looks like a note file.
func (l Layout) MetaPath(id nnid.ID) string {
	return filepath.Join(l.Dir(id), id.String())
}

// RelPath returns Path relative to Root.
func (l Layout) RelPath(id nnid.ID, ext string) string {
	return filepath.Join(append(l.Components(id.Time), id.String()+ext)...)
}

// RelMetaPath returns MetaPath relative to Root.
func (l Layout) RelMetaPath(id nnid.ID) string {
	return filepath.Join(append(l.Components(id.Time), id.String())...)
}

// ParseLeaf splits a note filename into its lower-cased identifier and
// extension. ok is false when name does not have the leaf shape.
func ParseLeaf(name string) (id, ext string, ok bool) {
	m := leafRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), m[2], true
}

// CheckExt rejects extensions that would not survive as a leaf filename.
func CheckExt(ext string) error {
	if !extRe.MatchString(ext) {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidExtension, ext)
	}
	return nil
}

// NoteOf decodes the note stored at path. Only the filename is consulted.
func NoteOf(path string) (models.Note, error) {
	name := filepath.Base(path)
	raw, ext, ok := ParseLeaf(name)
	if !ok {
		return models.Note{}, fmt.Errorf("%w: unexpected filename %q", apperr.ErrMalformedIdentity, name)
	}
	id, err := nnid.Parse(raw)
	if err != nil {
		return models.Note{}, err
	}
	return models.Note{ID: id, Exts: []string{ext}}, nil
}

// Placed reports whether relDir (relative to Root) is where the layout
// would file id.
func (l Layout) Placed(relDir string, id nnid.ID) bool {
	relDir = filepath.ToSlash(relDir)
	if relDir == "." {
		relDir = ""
	}
	return relDir == l.RelDir(id)
}
