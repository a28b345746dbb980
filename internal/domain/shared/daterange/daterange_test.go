package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestParse_NightsAreCalendarDays(t *testing.T) {
	dr, err := Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, 4, dr.Nights())
	assert.Len(t, dr.Days(), 4)
	assert.Equal(t, day(t, "2025-06-04"), dr.Days()[3])
}

func TestNights_ExactBeyondDurationRange(t *testing.T) {
	dr, err := Parse("1700-01-01", "2100-01-01")
	require.NoError(t, err)
	assert.Equal(t, 146097, dr.Nights())
}

func TestNew_TruncatesToDay(t *testing.T) {
	in := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	dr, err := New(in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, dr.Nights())
	assert.Equal(t, day(t, "2025-06-01"), dr.CheckIn)
}

func TestNew_RejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := Parse("2025-06-05", "2025-06-05")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Parse("2025-06-05", "2025-06-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Parse("06/01/2025", "2025-06-05")
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = Parse("", "2025-06-05")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestParseDay_AcceptsRFC3339(t *testing.T) {
	d, err := ParseDay("2025-06-01T23:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	a, _ := Parse("2025-06-01", "2025-06-05")

	cases := []struct {
		name     string
		in, out  string
		overlaps bool
	}{
		{"shared boundary after", "2025-06-05", "2025-06-08", false},
		{"shared boundary before", "2025-05-28", "2025-06-01", false},
		{"tail overlap", "2025-06-04", "2025-06-08", true},
		{"head overlap", "2025-05-30", "2025-06-02", true},
		{"contained", "2025-06-02", "2025-06-03", true},
		{"containing", "2025-05-01", "2025-07-01", true},
		{"disjoint", "2025-07-01", "2025-07-03", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Parse(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.overlaps, a.Overlaps(b))
			assert.Equal(t, tc.overlaps, b.Overlaps(a))
		})
	}
}

func TestMerge(t *testing.T) {
	a, _ := Parse("2025-06-01", "2025-06-05")
	b, _ := Parse("2025-06-05", "2025-06-08")
	merged, ok := a.Merge(b)
	require.True(t, ok)
	assert.Equal(t, 7, merged.Nights())

	c, _ := Parse("2025-06-10", "2025-06-12")
	_, ok = a.Merge(c)
	assert.False(t, ok)
}
