package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLMarkdown(t *testing.T) {
	src := "---\ntitle: Hidden\n---\n# Heading\n\nSome *text* and ~~gone~~.\n\n<script>alert(1)</script>\n"
	out, err := HTML(".md", []byte(src))
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "<h1>Heading</h1>")
	assert.Contains(t, s, "<em>text</em>")
	assert.Contains(t, s, "<del>gone</del>")
	assert.NotContains(t, s, "title: Hidden")
	assert.NotContains(t, s, "<script>")
}

func TestHTMLPlain(t *testing.T) {
	out, err := HTML(".txt", []byte("a < b & c\n"))
	require.NoError(t, err)
	assert.Equal(t, "<pre>a &lt; b &amp; c\n</pre>\n", string(out))
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Highlight(&buf, ".md", "# Title\n"))
	assert.Contains(t, buf.String(), "Title")
	assert.Contains(t, buf.String(), "\x1b[")

	buf.Reset()
	require.NoError(t, Highlight(&buf, ".mw", "plain words\n"))
	assert.True(t, strings.Contains(buf.String(), "plain") && strings.Contains(buf.String(), "words"))
}
