// Package filter parses the selection language used to narrow a walk:
// attribute and extension filters, index windows and date bounds.
package filter

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/models"
)

var attributeRe = regexp.MustCompile(`^([^=]+)(?:=(.*))?$`)

// Filters is one select or exclude list, split by kind.
type Filters struct {
	// Extensions holds extension keys such as ".txt", sorted and unique.
	Extensions []string
	// Attributes holds metadata key or key=value filters.
	Attributes []models.Attribute
}

// Empty reports whether no filter of either kind is set.
func (f Filters) Empty() bool {
	return len(f.Extensions) == 0 && len(f.Attributes) == 0
}

// HasExtension reports whether ext is one of the extension filters.
func (f Filters) HasExtension(ext string) bool {
	_, found := slices.BinarySearch(f.Extensions, ext)
	return found
}

// ParseAttribute parses "key" or "key=value". Surrounding whitespace is
// trimmed from both halves.
func ParseAttribute(s string) (models.Attribute, error) {
	m := attributeRe.FindStringSubmatch(s)
	if m == nil {
		return models.Attribute{}, fmt.Errorf("%w: %q", apperr.ErrInvalidFilterSyntax, s)
	}
	key := strings.TrimSpace(m[1])
	if key == "" {
		return models.Attribute{}, fmt.Errorf("%w: empty key in %q", apperr.ErrInvalidFilterSyntax, s)
	}
	return models.Attribute{Key: key, Value: strings.TrimSpace(m[2])}, nil
}

// ParseAttributes parses every entry of list.
func ParseAttributes(list []string) ([]models.Attribute, error) {
	out := make([]models.Attribute, 0, len(list))
	for _, s := range list {
		a, err := ParseAttribute(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Classify splits attrs into extension filters (keys starting with the
// extension marker) and metadata filters. An extension filter must not
// carry a value.
func Classify(attrs []models.Attribute) (Filters, error) {
	var f Filters
	seen := make(map[models.Attribute]struct{}, len(attrs))
	for _, a := range attrs {
		if a.IsExtension() {
			if a.Value != "" {
				return Filters{}, fmt.Errorf("%w: unexpected extension value %q", apperr.ErrInvalidFilterSyntax, a.String())
			}
			f.Extensions = append(f.Extensions, a.Key)
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		f.Attributes = append(f.Attributes, a)
	}
	slices.Sort(f.Extensions)
	f.Extensions = slices.Compact(f.Extensions)
	return f, nil
}

// ParseFilters parses and classifies a raw list in one step.
func ParseFilters(list []string) (Filters, error) {
	attrs, err := ParseAttributes(list)
	if err != nil {
		return Filters{}, err
	}
	return Classify(attrs)
}
