// Package content matches note text against a regular expression.
package content

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"slices"
	"unicode/utf8"
)

// TextExtensions lists the extensions whose files are searched, sorted.
var TextExtensions = []string{".md", ".mw", ".rst", ".txt"}

// bufSize is the read buffer. Longer lines are matched as a stream.
const bufSize = 64 * 1024

// Opener opens a file by vault-relative path.
type Opener func(path string) (io.ReadCloser, error)

// Matcher tests whether any line of a note's text files matches.
type Matcher struct {
	re *regexp.Regexp
}

// Compile builds a Matcher from an RE2 pattern.
func Compile(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("content: compile %q: %w", pattern, err)
	}
	return &Matcher{re: re}, nil
}

// String returns the source pattern.
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.re.String()
}

// IsText reports whether ext is searched.
func IsText(ext string) bool {
	_, found := slices.BinarySearch(TextExtensions, ext)
	return found
}

// File names one file of a note.
type File struct {
	Ext  string
	Path string // vault-relative, as spelled on disk
}

// Match reports whether a line in any text file of files matches. A nil
// Matcher matches everything. Files that no longer exist are skipped.
func (m *Matcher) Match(open Opener, files []File) (bool, error) {
	if m == nil {
		return true, nil
	}
	for _, f := range files {
		if !IsText(f.Ext) {
			continue
		}
		ok, err := m.matchFile(open, f.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) matchFile(open Opener, path string) (bool, error) {
	rc, err := open(path)
	if err != nil {
		return false, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, bufSize)
	for {
		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			lr := &lineReader{head: slices.Clone(line), br: br}
			ok := m.re.MatchReader(lr)
			if err := lr.drain(); err != nil {
				return false, fmt.Errorf("content: read %s: %w", path, err)
			}
			if ok {
				return true, nil
			}
			if lr.eof {
				return false, nil
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("content: read %s: %w", path, err)
		}
		if m.re.Match(trimEOL(line)) && (len(line) > 0 || err == nil) {
			return true, nil
		}
		if err != nil {
			return false, nil
		}
	}
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}

// lineReader yields the runes of one line that did not fit the buffer:
// head first, then br up to the next newline, which it consumes.
type lineReader struct {
	head []byte
	br   *bufio.Reader
	eol  bool
	eof  bool
	err  error
}

func (r *lineReader) ReadRune() (rune, int, error) {
	if r.eol {
		return 0, 0, io.EOF
	}
	for len(r.head) > 0 && !utf8.FullRune(r.head) {
		b, err := r.br.ReadByte()
		if err != nil {
			break
		}
		r.head = append(r.head, b)
	}
	var (
		c    rune
		size int
	)
	if len(r.head) > 0 {
		c, size = utf8.DecodeRune(r.head)
		r.head = r.head[size:]
	} else {
		var err error
		c, size, err = r.br.ReadRune()
		if err != nil {
			r.eol = true
			if errors.Is(err, io.EOF) {
				r.eof = true
			} else {
				r.err = err
			}
			return 0, 0, io.EOF
		}
	}
	if c == '\n' {
		r.eol = true
		return 0, 0, io.EOF
	}
	return c, size, nil
}

// drain consumes the rest of the line.
func (r *lineReader) drain() error {
	for !r.eol {
		if _, _, err := r.ReadRune(); err != nil {
			break
		}
	}
	return r.err
}
