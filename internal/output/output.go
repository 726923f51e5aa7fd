// Package output renders walked notes for the terminal.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/nnote/internal/content"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/noteservice"
	"github.com/starford/nnote/internal/render"
)

// Format selects how notes are printed.
type Format string

const (
	// FormatSummary prints "[ n] first line (attributes)".
	FormatSummary Format = "summary"
	// FormatIdentify prints identifiers only.
	FormatIdentify Format = "identify"
	// FormatFilename prints one file name per extension.
	FormatFilename Format = "filename"
	// FormatRealpath prints one absolute path per extension.
	FormatRealpath Format = "realpath"
	// FormatFull prints a header block followed by the note text.
	FormatFull Format = "full"
	// FormatJSON prints one JSON object per line.
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSummary, FormatIdentify, FormatFilename, FormatRealpath, FormatFull, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("output: unknown format %q", s)
	}
	return f, nil
}

// Source supplies what the printer needs beyond the note itself.
type Source interface {
	Item(index int, n models.Note) (noteservice.NoteListItem, error)
	Get(ctx context.Context, id nnid.ID) (*noteservice.NoteDetail, error)
	ReadFile(ctx context.Context, id nnid.ID, ext string) ([]byte, error)
	Path(id nnid.ID, ext string) string
}

var _ Source = (*noteservice.Service)(nil)

// Printer writes notes in one format.
type Printer struct {
	w      io.Writer
	format Format
	src    Source
	loc    *time.Location
	now    func() time.Time
	count  int
	// highlight colours note text in the full format.
	highlight bool
}

// NewPrinter returns a Printer. Dates are shown in loc.
func NewPrinter(w io.Writer, format Format, src Source, loc *time.Location) *Printer {
	if loc == nil {
		loc = time.Local
	}
	return &Printer{w: w, format: format, src: src, loc: loc, now: time.Now}
}

// SetHighlight turns syntax colouring of note text on or off.
func (p *Printer) SetHighlight(on bool) {
	p.highlight = on
}

// Print writes n, found at match ordinal index.
func (p *Printer) Print(ctx context.Context, index int, n models.Note) error {
	defer func() { p.count++ }()
	switch p.format {
	case FormatIdentify:
		_, err := fmt.Fprintln(p.w, n.ID)
		return err
	case FormatFilename:
		for _, ext := range n.Exts {
			if _, err := fmt.Fprintln(p.w, n.ID.String()+ext); err != nil {
				return err
			}
		}
		return nil
	case FormatRealpath:
		for _, ext := range n.Exts {
			path := p.src.Path(n.ID, ext)
			if real, err := filepath.EvalSymlinks(path); err == nil {
				path = real
			}
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if _, err := fmt.Fprintln(p.w, path); err != nil {
				return err
			}
		}
		return nil
	case FormatFull:
		return p.full(ctx, index, n)
	case FormatJSON:
		item, err := p.src.Item(index, n)
		if err != nil {
			return err
		}
		return json.NewEncoder(p.w).Encode(item)
	default:
		item, err := p.src.Item(index, n)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, SummaryLine(item))
		return err
	}
}

// SummaryLine renders "[ n] summary (k=v, k)".
func SummaryLine(item noteservice.NoteListItem) string {
	line := fmt.Sprintf("[%2d] %s", item.Index, item.Summary)
	if len(item.Attributes) > 0 {
		line += " (" + joinAttributes(item.Attributes) + ")"
	}
	return line
}

func joinAttributes(attrs []models.Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) full(ctx context.Context, index int, n models.Note) error {
	d, err := p.src.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	var files []noteservice.FileInfo
	var size uint64
	for _, f := range d.Files {
		if n.HasExt(f.Ext) {
			files = append(files, f)
			size += uint64(f.Size)
		}
	}

	when := n.ID.Time.In(p.loc)
	row := func(label, value string) string {
		return LabelStyle.Render(fmt.Sprintf("%-5s", label)) + " " + value
	}
	lines := []string{
		fmt.Sprintf("[%d] %s", index, IDStyle.Render(n.ID.String())),
		row("Date", ValueStyle.Render(when.Format("2006-01-02T15:04")+" ")+
			MutedStyle.Render("("+humanize.RelTime(when, p.now(), "ago", "from now")+")")),
		row("Path", ValueStyle.Render(p.src.Path(n.ID, ""))),
		row("Exts", ValueStyle.Render(strings.Join(n.Exts, " "))+" "+
			MutedStyle.Render("("+humanize.IBytes(size)+")")),
		row("Attr", AttrStyle.Render(joinAttributes(d.Attributes))),
	}

	if p.count > 0 {
		if _, err := fmt.Fprintln(p.w); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(p.w, HeaderBox.Render(strings.Join(lines, "\n"))); err != nil {
		return err
	}
	for _, f := range files {
		if !content.IsText(f.Ext) {
			continue
		}
		data, err := p.readText(ctx, n.ID, f.Ext)
		if err != nil {
			return err
		}
		if p.highlight {
			if err := render.Highlight(p.w, f.Ext, data); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(p.w, data); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) readText(ctx context.Context, id nnid.ID, ext string) (string, error) {
	data, err := p.src.ReadFile(ctx, id, ext)
	if err != nil {
		return "", err
	}
	s := string(data)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s, nil
}
