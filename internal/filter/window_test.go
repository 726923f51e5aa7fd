package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/nnote/internal/apperr"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []Range
		wantErr bool
	}{
		{name: "single", in: "3", want: []Range{{3, 3}}},
		{name: "mixed", in: "1-2,5,6-8", want: []Range{{1, 2}, {5, 8}}},
		{name: "unsorted", in: "9,1-3", want: []Range{{1, 3}, {9, 9}}},
		{name: "overlap", in: "1-5,3-7", want: []Range{{1, 7}}},
		{name: "contained", in: "1-10,2-3", want: []Range{{1, 10}}},
		{name: "adjacent", in: "1-2,3-4", want: []Range{{1, 4}}},
		{name: "gap kept", in: "1-2,4", want: []Range{{1, 2}, {4, 4}}},
		{name: "multi digit compared as ints", in: "10-20,9", want: []Range{{9, 20}}},
		{name: "reversed", in: "5-3", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "trailing comma", in: "1,", wantErr: true},
		{name: "letters", in: "a-b", wantErr: true},
		{name: "open ended", in: "3-", wantErr: true},
		{name: "spaces", in: "1, 2", wantErr: true},
		{name: "overflow", in: "99999999999999999999", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "zero range", in: "0-0", wantErr: true},
		{name: "zero start", in: "0-3", wantErr: true},
		{name: "zero among others", in: "2,0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, apperr.ErrInvalidRangeSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowMax(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		count int
		want  int
	}{
		{name: "unbounded", want: 0},
		{name: "count only", count: 4, want: 4},
		{name: "ranges only", spec: "1-2,7", want: 7},
		{name: "count below ranges", spec: "1-10", count: 3, want: 3},
		{name: "count above ranges", spec: "1-2", count: 30, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindow(tt.spec, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Max())
		})
	}
}

func TestWindowContains(t *testing.T) {
	w, err := NewWindow("2-3,6,9-11", 0)
	require.NoError(t, err)

	var got []int
	for n := 1; n <= 12; n++ {
		if w.Contains(n) {
			got = append(got, n)
		}
	}
	assert.Equal(t, []int{2, 3, 6, 9, 10, 11}, got)
	assert.Equal(t, "2-3,6,9-11", w.String())
}

func TestWindowDone(t *testing.T) {
	w, err := NewWindow("5-10", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Max())
	assert.False(t, w.Done(2))
	assert.True(t, w.Done(3))

	all := Window{}
	assert.True(t, all.Contains(1_000_000))
	assert.False(t, all.Done(1_000_000))
}

func TestNewWindowNegativeCount(t *testing.T) {
	_, err := NewWindow("", -1)
	require.ErrorIs(t, err, apperr.ErrInvalidRangeSyntax)
}
