package filter

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/nnote/internal/apperr"
)

var rangeRe = regexp.MustCompile(`^\d+(?:-\d+)?(?:,\d+(?:-\d+)?)*$`)

// Range is an inclusive span of 1-based match ordinals.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Window selects which match ordinals a walk surfaces.
type Window struct {
	// Ranges is sorted and disjoint. Nil selects every ordinal.
	Ranges []Range
	// Count caps the ordinals considered; 0 means no cap.
	Count int
}

// ParseRange parses a range spec such as "1-2,5,6-8" into sorted ranges.
// Overlapping and adjacent ranges are merged. Ordinal 0 is rejected.
func ParseRange(s string) ([]Range, error) {
	if !rangeRe.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidRangeSyntax, s)
	}
	var out []Range
	for item := range strings.SplitSeq(s, ",") {
		lo, hi, isPair := strings.Cut(item, "-")
		if !isPair {
			hi = lo
		}
		minV, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidRangeSyntax, item)
		}
		maxV, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidRangeSyntax, item)
		}
		if minV < 1 {
			return nil, fmt.Errorf("%w: ordinals start at 1: %q", apperr.ErrInvalidRangeSyntax, item)
		}
		if minV > maxV {
			return nil, fmt.Errorf("%w: bad range %q", apperr.ErrInvalidRangeSyntax, item)
		}
		out = append(out, Range{Min: minV, Max: maxV})
	}
	return merge(out), nil
}

func merge(ranges []Range) []Range {
	slices.SortFunc(ranges, func(a, b Range) int {
		return cmp.Or(cmp.Compare(a.Min, b.Min), cmp.Compare(a.Max, b.Max))
	})
	out := ranges[:0]
	for _, r := range ranges {
		if n := len(out); n > 0 && r.Min <= out[n-1].Max+1 {
			out[n-1].Max = max(out[n-1].Max, r.Max)
			continue
		}
		out = append(out, r)
	}
	return out
}

// NewWindow builds a Window from an optional range spec and count cap.
func NewWindow(spec string, count int) (Window, error) {
	if count < 0 {
		return Window{}, fmt.Errorf("%w: negative count %d", apperr.ErrInvalidRangeSyntax, count)
	}
	w := Window{Count: count}
	if spec != "" {
		ranges, err := ParseRange(spec)
		if err != nil {
			return Window{}, err
		}
		w.Ranges = ranges
	}
	return w, nil
}

// Max returns the last ordinal the window can surface, or 0 if unbounded.
func (w Window) Max() int {
	hi := 0
	if len(w.Ranges) > 0 {
		hi = w.Ranges[len(w.Ranges)-1].Max
	}
	if w.Count > 0 && (hi == 0 || w.Count < hi) {
		hi = w.Count
	}
	return hi
}

// Contains reports whether ordinal n is surfaced. The count cap is not
// consulted here; see Done.
func (w Window) Contains(n int) bool {
	if w.Ranges == nil {
		return true
	}
	i, found := slices.BinarySearchFunc(w.Ranges, n, func(r Range, n int) int {
		return cmp.Compare(r.Min, n)
	})
	if found {
		return true
	}
	return i > 0 && n <= w.Ranges[i-1].Max
}

// Done reports whether a walk that has counted n matches can stop: no
// later ordinal could be surfaced.
func (w Window) Done(n int) bool {
	hi := w.Max()
	return hi > 0 && n >= hi
}

// String renders the window back into range-spec form.
func (w Window) String() string {
	parts := make([]string, 0, len(w.Ranges))
	for _, r := range w.Ranges {
		if r.Min == r.Max {
			parts = append(parts, strconv.Itoa(r.Min))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Min, r.Max))
		}
	}
	return strings.Join(parts, ",")
}
