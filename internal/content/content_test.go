package content

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opener(files map[string]string) (Opener, *[]string) {
	var opened []string
	return func(path string) (io.ReadCloser, error) {
		opened = append(opened, path)
		body, ok := files[path]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(body)), nil
	}, &opened
}

func files(base string, exts ...string) []File {
	out := make([]File, len(exts))
	for i, ext := range exts {
		out[i] = File{Ext: ext, Path: base + ext}
	}
	return out
}

func TestMatch(t *testing.T) {
	open, opened := opener(map[string]string{
		"a/n.txt": "first line\nsecond has Needle\n",
		"a/n.jpg": "Needle",
		"a/n.md":  "# nothing here\n",
	})

	m, err := Compile(`Needle`)
	require.NoError(t, err)

	ok, err := m.Match(open, files("a/n", ".jpg", ".md", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a/n.md", "a/n.txt"}, *opened, "binary extensions are not read")

	ok, err = m.Match(open, files("a/n", ".jpg"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchLineAnchors(t *testing.T) {
	open, _ := opener(map[string]string{"n.txt": "alpha\nbeta\n"})

	m, err := Compile(`^beta$`)
	require.NoError(t, err)
	ok, err := m.Match(open, files("n", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchVanishedFile(t *testing.T) {
	open, _ := opener(map[string]string{"n.md": "hit"})

	m, err := Compile(`hit`)
	require.NoError(t, err)
	ok, err := m.Match(open, files("n", ".md", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Match(open, files("gone", ".txt"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	ok, err := m.Match(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.String())
}

func TestCompileError(t *testing.T) {
	_, err := Compile(`(`)
	require.Error(t, err)
}

func TestIsText(t *testing.T) {
	for _, ext := range []string{".txt", ".rst", ".md", ".mw"} {
		assert.True(t, IsText(ext), ext)
	}
	assert.False(t, IsText(".jpg"))
	assert.False(t, IsText(".TXT"))
}

func TestMatchLongLines(t *testing.T) {
	long := strings.Repeat("A", 2<<20+1)
	open, _ := opener(map[string]string{
		"after.txt":  long + "\nthen Needle\n",
		"inside.txt": long + "Needle" + long + "\n",
		"tail.txt":   "a" + strings.Repeat("ß", bufSize) + "Needle$",
		"none.md":    long + "\n" + long,
	})

	m, err := Compile(`Needle`)
	require.NoError(t, err)
	for _, base := range []string{"after", "inside"} {
		ok, err := m.Match(open, files(base, ".txt"))
		require.NoError(t, err, base)
		assert.True(t, ok, base)
	}

	ok, err := m.Match(open, files("none", ".md"))
	require.NoError(t, err)
	assert.False(t, ok)

	end, err := Compile(`ßNeedle\$$`)
	require.NoError(t, err)
	ok, err = end.Match(open, files("tail", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)

	anchored, err := Compile(`^then`)
	require.NoError(t, err)
	ok, err = anchored.Match(open, files("after", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchEmptyLines(t *testing.T) {
	open, _ := opener(map[string]string{"a.txt": "x\n", "b.txt": "x\n\ny\n"})

	m, err := Compile(`^$`)
	require.NoError(t, err)
	ok, err := m.Match(open, files("a", ".txt"))
	require.NoError(t, err)
	assert.False(t, ok, "no line after the final newline")

	ok, err = m.Match(open, files("b", ".txt"))
	require.NoError(t, err)
	assert.True(t, ok)
}
