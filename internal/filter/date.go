package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/nnid"
)

// yyyy[-mm[-dd[Thh[:mm[:ss[.uuuuuu]]]]]], year may be two digits.
var dateRe = regexp.MustCompile(
	`^(\d{4}|\d{2})(?:-(\d{1,2})(?:-(\d{1,2})(?:T(\d{1,2})(?::(\d{1,2})(?::(\d{1,2})(?:\.(\d{6}))?)?)?)?)?)?$`)

// now is swapped in tests to pin the century used for two-digit years.
var now = time.Now

// date is a parsed date spec. level counts the fields given, 1 (year
// only) through 7 (microsecond).
type date struct {
	fields [7]int
	level  int
}

// ParseSince parses a since bound. A full identifier is returned as is;
// otherwise missing fields take their lowest value and the nonce is 0.
func ParseSince(s string, loc *time.Location) (nnid.ID, error) {
	if id, err := nnid.Parse(s); err == nil {
		return id, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nnid.ID{}, err
	}
	return nnid.ID{Time: d.time(loc).UTC(), Nonce: nnid.NonceMin}, nil
}

// ParseUntil parses an until bound. A full identifier is returned as is;
// otherwise the spec is rounded up to the last microsecond of the unit it
// names, with the maximum nonce.
func ParseUntil(s string, loc *time.Location) (nnid.ID, error) {
	if id, err := nnid.Parse(s); err == nil {
		return id, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nnid.ID{}, err
	}
	t := d.time(loc)
	switch d.level {
	case 1:
		t = t.AddDate(1, 0, 0)
	case 2:
		t = t.AddDate(0, 1, 0)
	case 3:
		t = t.AddDate(0, 0, 1)
	case 4:
		t = t.Add(time.Hour)
	case 5:
		t = t.Add(time.Minute)
	case 6:
		t = t.Add(time.Second)
	}
	if d.level < 7 {
		t = t.Add(-time.Microsecond)
	}
	return nnid.ID{Time: t.UTC(), Nonce: nnid.NonceMax}, nil
}

func parseDate(s string) (date, error) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return date{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDateSyntax, s)
	}
	d := date{fields: [7]int{0, 1, 1, 0, 0, 0, 0}}
	for i, g := range m[1:] {
		if g == "" {
			break
		}
		v, err := strconv.Atoi(g)
		if err != nil {
			return date{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDateSyntax, s)
		}
		d.fields[i] = v
		d.level = i + 1
	}
	if len(m[1]) == 2 {
		century := now().Year()
		d.fields[0] += century - century%100
	}
	if err := d.validate(); err != nil {
		return date{}, fmt.Errorf("%w: %q: %s", apperr.ErrInvalidDateSyntax, s, err)
	}
	return d, nil
}

func (d date) validate() error {
	year, month, day := d.fields[0], d.fields[1], d.fields[2]
	switch {
	case year < 1:
		return fmt.Errorf("year %d out of range", year)
	case month < 1 || month > 12:
		return fmt.Errorf("month %d out of range", month)
	case day < 1 || day > daysIn(year, time.Month(month)):
		return fmt.Errorf("day %d out of range", day)
	case d.fields[3] > 23:
		return fmt.Errorf("hour %d out of range", d.fields[3])
	case d.fields[4] > 59:
		return fmt.Errorf("minute %d out of range", d.fields[4])
	case d.fields[5] > 59:
		return fmt.Errorf("second %d out of range", d.fields[5])
	}
	return nil
}

func (d date) time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	f := d.fields
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], f[6]*1000, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
