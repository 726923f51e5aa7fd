package nnid

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/nnote/internal/apperr"
)

func TestPackUnpackSymmetry(t *testing.T) {
	tests := []struct {
		name   string
		fields []uint64
		radix  []uint64
	}{
		{name: "head zero", fields: []uint64{0, 0, 0, 0}, radix: headRadix},
		{name: "head max fields", fields: []uint64{2024, 11, 30, 23}, radix: headRadix},
		{name: "tail", fields: []uint64{59, 59, 999_999}, radix: tailRadix},
		{name: "tail zero", fields: []uint64{0, 0, 0}, radix: tailRadix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Pack(tt.fields, tt.radix)
			assert.Equal(t, tt.fields, Unpack(v, tt.radix))
		})
	}
}

func TestPackWrapsModulo32Bits(t *testing.T) {
	// Years past overflowYear no longer fit in 32 bits of HEAD.
	const overflowYear = 4294967296 / (12 * 31 * 24)
	year := uint64(overflowYear + 1)
	wrapped := Pack([]uint64{year, 0, 0, 0}, headRadix)
	direct := uint32(year * 12 * 31 * 24 % 4294967296)
	assert.Equal(t, direct, wrapped)
}

func TestEncodeKnownIdentifier(t *testing.T) {
	// Fixture derived from the mixed-radix unpacking of 0001a2b3-0004c5d6.
	fields := Unpack(0x0001a2b3, headRadix)
	tail := Unpack(0x0004c5d6, tailRadix)
	want := time.Date(int(fields[0]), time.Month(fields[1]+1), int(fields[2]+1), int(fields[3]),
		int(tail[0]), int(tail[1]), int(tail[2])*1000, time.UTC)

	assert.Equal(t, 12, want.Year())
	assert.Equal(t, time.January, want.Month())
	assert.Equal(t, 3, want.Day())
	assert.Equal(t, 3, want.Hour())
	assert.Equal(t, 312790*1000, want.Nanosecond())

	require.Equal(t, "0001a2b3-0004c5d6-deadbeef", Encode(want, 0xdeadbeef))

	id, err := Parse("0001a2b3-0004c5d6-deadbeef")
	require.NoError(t, err)
	assert.True(t, id.Time.Equal(want), "got %v, want %v", id.Time, want)
	assert.Equal(t, uint32(0xdeadbeef), id.Nonce)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	lo := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).UnixMicro()
	hi := time.Date(9999, 12, 31, 23, 59, 59, 999999000, time.UTC).UnixMicro()

	for range 5000 {
		ts := time.UnixMicro(lo + rng.Int64N(hi-lo)).UTC()
		nonce := rng.Uint32()

		id, err := Parse(Encode(ts, nonce))
		require.NoError(t, err)
		require.True(t, id.Time.Equal(ts), "time %v decoded as %v", ts, id.Time)
		require.Equal(t, nonce, id.Nonce)
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	lower, err := Parse("0001a2b3-0004c5d6-deadbeef")
	require.NoError(t, err)
	upper, err := Parse("0001A2B3-0004C5D6-DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, 0, lower.Compare(upper))
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"",
		"0001a2b3-0004c5d6",
		"0001a2b3-0004c5d6-deadbeef-00000000",
		"0001a2b3-0004c5d6-deadbeeg",
		"001a2b3-0004c5d6-deadbeef",
		"0001a2b3_0004c5d6_deadbeef",
		" 0001a2b3-0004c5d6-deadbeef",
		// minute 71: tail beyond one hour of microseconds
		"0001a2b3-ffffffff-00000000",
	}
	for _, s := range cases {
		_, err := Parse(s)
		assert.ErrorIs(t, err, apperr.ErrMalformedIdentity, "input %q", s)
	}
}

func TestDecodeRejectsImpossibleDate(t *testing.T) {
	// 2023-02-31 00h: day index 30 in February.
	head := Pack([]uint64{2023, 1, 30, 0}, headRadix)
	_, err := Decode(head, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrMalformedIdentity))
}

func TestCompare(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := ID{Time: ts, Nonce: 1}
	b := ID{Time: ts, Nonce: 2}
	c := ID{Time: ts.Add(time.Microsecond), Nonce: 0}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, b.Compare(c))
}

func TestLexicalOrderMatchesCompare(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for range 1000 {
		a := ID{Time: base.Add(time.Duration(rng.Int64N(int64(5*365*24*time.Hour))).Truncate(time.Microsecond)), Nonce: rng.Uint32()}
		b := ID{Time: base.Add(time.Duration(rng.Int64N(int64(5*365*24*time.Hour))).Truncate(time.Microsecond)), Nonce: rng.Uint32()}
		lex := 0
		switch {
		case a.String() < b.String():
			lex = -1
		case a.String() > b.String():
			lex = 1
		}
		require.Equal(t, a.Compare(b), lex, "%s vs %s", a, b)
	}
}

func TestNewTruncatesToMicrosecond(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.FixedZone("X", 3600))
	id := New(now)
	assert.Equal(t, time.UTC, id.Time.Location())
	assert.Equal(t, 123456000, id.Time.Nanosecond())
	assert.Equal(t, 2, id.Time.Hour())
}

func TestTextMarshalling(t *testing.T) {
	var id ID
	require.NoError(t, id.UnmarshalText([]byte("0001a2b3-0004c5d6-deadbeef")))
	b, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0001a2b3-0004c5d6-deadbeef", string(b))
	assert.Error(t, id.UnmarshalText([]byte("nope")))
}
