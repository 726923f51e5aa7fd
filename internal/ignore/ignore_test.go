package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDefaults(t *testing.T) {
	m, err := Compile(DefaultPatterns)
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{".git", true},
		{".git/objects/ab/cdef", true},
		{"01/13/.0113dfb1-6c328450-5f3d2a19.md.swp", true},
		{"01/13/0113dfb1-6c328450-5f3d2a19.md~", true},
		{".DS_Store", true},
		{"2025/01/.nnote-tmp-12345", true},
		{"01/13/0113dfb1-6c328450-5f3d2a19.md", false},
		{"01/13/0113dfb1-6c328450-5f3d2a19", false},
		{"gitignore", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.rel))
		})
	}
}

func TestMatchAnchoredPatterns(t *testing.T) {
	m, err := Compile([]string{"archive/**", "/drafts/*.txt", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	assert.True(t, m.Match("archive/01/x.md"))
	assert.True(t, m.Match("drafts/a.txt"))
	assert.False(t, m.Match("drafts/sub/a.txt"))
	assert.False(t, m.Match("notes/archive"))
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Match(".git"))
	assert.Zero(t, m.Len())
}

func TestCompileError(t *testing.T) {
	_, err := Compile([]string{"[a-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"[a-"`)
}
