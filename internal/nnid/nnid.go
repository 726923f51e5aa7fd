// Package nnid encodes a note's (timestamp, nonce) pair as a fixed-width
// identifier of three 8-digit hex groups, HEAD-TAIL-NONCE.
//
// HEAD packs year, month, day and hour with mixed radices {12, 31, 24};
// TAIL packs minute, second and microsecond with radices {60, 1000000}.
// Both are truncated to 32 bits, so components outside the representable
// range wrap rather than fail.
package nnid

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/starford/nnote/internal/apperr"
)

// Nonce bounds. An until bound carries NonceMax so that every note in its
// final microsecond is admitted.
const (
	NonceMin uint32 = 0x00000000
	NonceMax uint32 = 0xffffffff
)

var (
	headRadix = []uint64{12, 31, 24}
	tailRadix = []uint64{60, 1_000_000}

	idRe = regexp.MustCompile(`^([0-9A-Fa-f]{8})-([0-9A-Fa-f]{8})-([0-9A-Fa-f]{8})$`)
)

// ID identifies a note. Time is UTC with microsecond precision.
type ID struct {
	Time  time.Time
	Nonce uint32
}

// New returns an ID for t (truncated to the microsecond) with a random nonce.
func New(t time.Time) ID {
	return ID{Time: t.UTC().Truncate(time.Microsecond), Nonce: rand.Uint32()}
}

// Pack folds fields, most significant first, into a single value:
// ((f0*r0 + f1)*r1 + f2)... The result is taken modulo 2^32.
func Pack(fields []uint64, radix []uint64) uint32 {
	v := fields[0]
	for i, r := range radix {
		v = v*r + fields[i+1]
	}
	return uint32(v)
}

// Unpack is the inverse of Pack: it peels fields off the least significant
// end with repeated mod/div and returns len(radix)+1 fields.
func Unpack(v uint32, radix []uint64) []uint64 {
	fields := make([]uint64, len(radix)+1)
	x := uint64(v)
	for i := len(radix) - 1; i >= 0; i-- {
		fields[i+1] = x % radix[i]
		x /= radix[i]
	}
	fields[0] = x
	return fields
}

// Head packs the date and hour of t.
func Head(t time.Time) uint32 {
	t = t.UTC()
	return Pack([]uint64{
		uint64(t.Year()),
		uint64(t.Month() - 1),
		uint64(t.Day() - 1),
		uint64(t.Hour()),
	}, headRadix)
}

// Tail packs the minute, second and microsecond of t.
func Tail(t time.Time) uint32 {
	t = t.UTC()
	return Pack([]uint64{
		uint64(t.Minute()),
		uint64(t.Second()),
		uint64(t.Nanosecond() / 1000),
	}, tailRadix)
}

// Decode rebuilds the UTC instant from head and tail. Fields that do not
// survive the round trip (31 February, minute 65, ...) are rejected.
func Decode(head, tail uint32) (time.Time, error) {
	h := Unpack(head, headRadix)
	m := Unpack(tail, tailRadix)
	year, month, day, hour := int(h[0]), time.Month(h[1]+1), int(h[2]+1), int(h[3])
	minute, second, micro := int(m[0]), int(m[1]), int(m[2])

	t := time.Date(year, month, day, hour, minute, second, micro*1000, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, fmt.Errorf("%w: %08x-%08x does not name a valid time", apperr.ErrMalformedIdentity, head, tail)
	}
	return t, nil
}

// Encode formats t and nonce as HEAD-TAIL-NONCE in lowercase hex.
func Encode(t time.Time, nonce uint32) string {
	return fmt.Sprintf("%08x-%08x-%08x", Head(t), Tail(t), nonce)
}

// Parse decodes an identifier string. Hex digits are case-insensitive.
func Parse(s string) (ID, error) {
	m := idRe.FindStringSubmatch(s)
	if m == nil {
		return ID{}, fmt.Errorf("%w: %q", apperr.ErrMalformedIdentity, s)
	}
	var parts [3]uint32
	for i := range parts {
		v, err := strconv.ParseUint(m[i+1], 16, 32)
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q", apperr.ErrMalformedIdentity, s)
		}
		parts[i] = uint32(v)
	}
	t, err := Decode(parts[0], parts[1])
	if err != nil {
		return ID{}, err
	}
	return ID{Time: t, Nonce: parts[2]}, nil
}

// Valid reports whether s has the identifier shape. It does not check that
// the fields decode.
func Valid(s string) bool {
	return idRe.MatchString(s)
}

// String returns the encoded identifier.
func (id ID) String() string {
	return Encode(id.Time, id.Nonce)
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.Time.IsZero() && id.Nonce == 0
}

// Compare orders ids by time, then nonce.
func (id ID) Compare(other ID) int {
	if c := id.Time.Compare(other.Time); c != 0 {
		return c
	}
	switch {
	case id.Nonce < other.Nonce:
		return -1
	case id.Nonce > other.Nonce:
		return 1
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
