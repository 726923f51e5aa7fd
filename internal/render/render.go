// Package render presents note text as HTML or as highlighted terminal
// output.
package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/nnote/internal/parser"
)

// Raw HTML in notes is escaped; goldmark runs without WithUnsafe.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// lexers maps text extensions to chroma lexer names. Unlisted extensions
// fall back to plain text.
var lexers = map[string]string{
	".md":  "markdown",
	".rst": "rst",
}

const (
	termFormatter = "terminal256"
	termStyle     = "monokai"
)

// HTML renders text stored under ext. Markdown is converted without its
// frontmatter; anything else is escaped into a <pre> block.
func HTML(ext string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if ext != ".md" {
		buf.WriteString("<pre>")
		buf.WriteString(html.EscapeString(string(data)))
		buf.WriteString("</pre>\n")
		return buf.Bytes(), nil
	}

	body := data
	if r, err := parser.Parse(data); err == nil {
		body = []byte(r.Body)
	}
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", ext, err)
	}
	return buf.Bytes(), nil
}

// Highlight writes text stored under ext to w with ANSI colours.
func Highlight(w io.Writer, ext, text string) error {
	lexer, ok := lexers[ext]
	if !ok {
		lexer = "plaintext"
	}
	if err := quick.Highlight(w, text, lexer, termFormatter, termStyle); err != nil {
		return fmt.Errorf("highlight %s: %w", ext, err)
	}
	return nil
}
