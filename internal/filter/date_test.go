package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/nnote/internal/apperr"
	"github.com/starford/nnote/internal/nnid"
)

func pinNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func utc(y int, mo time.Month, d, h, mi, s, us int) time.Time {
	return time.Date(y, mo, d, h, mi, s, us*1000, time.UTC)
}

func TestParseSince(t *testing.T) {
	pinNow(t, utc(2026, 10, 18, 0, 0, 0, 0))

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024", utc(2024, 1, 1, 0, 0, 0, 0)},
		{"2024-03", utc(2024, 3, 1, 0, 0, 0, 0)},
		{"2024-3-5", utc(2024, 3, 5, 0, 0, 0, 0)},
		{"2024-03-05T7", utc(2024, 3, 5, 7, 0, 0, 0)},
		{"2024-03-05T07:08", utc(2024, 3, 5, 7, 8, 0, 0)},
		{"2024-03-05T07:08:09", utc(2024, 3, 5, 7, 8, 9, 0)},
		{"2024-03-05T07:08:09.000123", utc(2024, 3, 5, 7, 8, 9, 123)},
		{"24-03", utc(2024, 3, 1, 0, 0, 0, 0)},
		{"99", utc(2099, 1, 1, 0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSince(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
			assert.Equal(t, nnid.NonceMin, got.Nonce)
		})
	}
}

func TestParseUntil(t *testing.T) {
	pinNow(t, utc(2026, 10, 18, 0, 0, 0, 0))

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024", utc(2024, 12, 31, 23, 59, 59, 999999)},
		{"2024-02", utc(2024, 2, 29, 23, 59, 59, 999999)},
		{"2023-02", utc(2023, 2, 28, 23, 59, 59, 999999)},
		{"2024-12-31", utc(2024, 12, 31, 23, 59, 59, 999999)},
		{"2024-03-05T07", utc(2024, 3, 5, 7, 59, 59, 999999)},
		{"2024-03-05T07:08", utc(2024, 3, 5, 7, 8, 59, 999999)},
		{"2024-03-05T07:08:09", utc(2024, 3, 5, 7, 8, 9, 999999)},
		{"2024-03-05T07:08:09.000123", utc(2024, 3, 5, 7, 8, 9, 123)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUntil(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
			assert.Equal(t, nnid.NonceMax, got.Nonce)
		})
	}
}

func TestParseDateLocation(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)

	since, err := ParseSince("2024-01-01", plus2)
	require.NoError(t, err)
	assert.Equal(t, utc(2023, 12, 31, 22, 0, 0, 0), since.Time)
	assert.Equal(t, time.UTC, since.Time.Location())

	until, err := ParseUntil("2024-01-01", plus2)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 1, 21, 59, 59, 999999), until.Time)
}

func TestParseDateIdentifierPrecedence(t *testing.T) {
	const raw = "0001a2b3-0004c5d6-DEADBEEF"
	want, err := nnid.Parse(raw)
	require.NoError(t, err)

	since, err := ParseSince(raw, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, want, since)

	until, err := ParseUntil(raw, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, want, until)
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"yesterday",
		"202",
		"2024-",
		"2024-13",
		"2024-00",
		"2024-02-30",
		"2023-02-29",
		"2024-01-00",
		"2024-01-01T24",
		"2024-01-01T10:60",
		"2024-01-01T10:10:60",
		"2024-01-01T10:10:10.12",
		"2024-01-01 10:00",
		"0000",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSince(in, time.UTC)
			require.ErrorIs(t, err, apperr.ErrInvalidDateSyntax)
			_, err = ParseUntil(in, time.UTC)
			require.ErrorIs(t, err, apperr.ErrInvalidDateSyntax)
		})
	}
}
