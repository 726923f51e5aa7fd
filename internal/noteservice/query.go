package noteservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/content"
	"github.com/starford/nnote/internal/filter"
	"github.com/starford/nnote/internal/walker"
)

// Walk orders.
const (
	OrderForward = "forward"
	OrderReverse = "reverse"
)

// Query selects notes. Every field is in the textual form a user types.
type Query struct {
	// Note is a date or identifier that sets both Since and Until when
	// they are empty.
	Note    string   `json:"note,omitempty"`
	Since   string   `json:"since,omitempty"`
	Until   string   `json:"until,omitempty"`
	Index   string   `json:"index,omitempty"`
	Count   int      `json:"count,omitempty"`
	Order   string   `json:"order,omitempty"`
	Grep    string   `json:"grep,omitempty"`
	Select  []string `json:"select,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Options parses q into walker options. Every syntax error surfaces here,
// before any file is touched.
func (q Query) Options(loc *time.Location) ([]walker.Option, error) {
	var opts []walker.Option

	since, until := q.Since, q.Until
	if q.Note != "" {
		if since == "" {
			since = q.Note
		}
		if until == "" {
			until = q.Note
		}
	}
	if since != "" {
		id, err := filter.ParseSince(since, loc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, walker.WithSince(id))
	}
	if until != "" {
		id, err := filter.ParseUntil(until, loc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, walker.WithUntil(id))
	}

	win, err := filter.NewWindow(q.Index, q.Count)
	if err != nil {
		return nil, err
	}
	opts = append(opts, walker.WithWindow(win))

	switch strings.ToLower(q.Order) {
	case "", OrderReverse:
		opts = append(opts, walker.WithReverse(true))
	case OrderForward:
		opts = append(opts, walker.WithReverse(false))
	default:
		return nil, fmt.Errorf("%w: unknown order %q", apperr.ErrInvalidFilterSyntax, q.Order)
	}

	if q.Grep != "" {
		m, err := content.Compile(q.Grep)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidFilterSyntax, err)
		}
		opts = append(opts, walker.WithContent(m))
	}

	sel, err := filter.ParseFilters(q.Select)
	if err != nil {
		return nil, err
	}
	exc, err := filter.ParseFilters(q.Exclude)
	if err != nil {
		return nil, err
	}
	return append(opts, walker.WithSelect(sel), walker.WithExclude(exc)), nil
}
