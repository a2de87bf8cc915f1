package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeDaysAndContains(t *testing.T) {
	r := NewDateRange(
		time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
	)

	// Bounds normalize to midnight and the range is inclusive
	assert.Equal(t, 14, r.Days())
	assert.True(t, r.Contains(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 1, 18, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)))
}

func TestDateRangeValidate(t *testing.T) {
	valid := NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	assert.NoError(t, valid.Validate())

	backwards := DateRange{
		Start: time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	assert.Error(t, backwards.Validate())

	assert.Error(t, DateRange{}.Validate())
}

func TestSubwindows(t *testing.T) {
	r := NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC),
	)

	// 31 days into 7-day windows: four full windows plus a 3-day tail
	windows := r.Subwindows(7)
	require.Len(t, windows, 5)
	assert.True(t, windows[0].Start.Equal(r.Start))
	assert.True(t, windows[4].End.Equal(r.End))
	assert.Equal(t, 3, windows[4].Days())

	for i, w := range windows {
		assert.NoError(t, w.Validate())
		assert.LessOrEqual(t, w.Days(), 7)
		if i > 0 {
			assert.True(t, w.Start.Equal(windows[i-1].End.AddDate(0, 0, 1)))
		}
	}
}

func TestSubwindowsExactMultiple(t *testing.T) {
	r := NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
	)

	windows := r.Subwindows(7)
	require.Len(t, windows, 2)
	assert.Equal(t, 7, windows[0].Days())
	assert.Equal(t, 7, windows[1].Days())
}

func TestSubwindowsLargerThanRange(t *testing.T) {
	r := NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
	)

	windows := r.Subwindows(14)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Start.Equal(r.Start))
	assert.True(t, windows[0].End.Equal(r.End))

	// Non-positive size means no decomposition
	windows = r.Subwindows(0)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].End.Equal(r.End))
}

func TestNextWeekday(t *testing.T) {
	// Jan 1 2025 is a Wednesday
	wed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sunday := NextWeekday(wed, time.Sunday)
	assert.True(t, sunday.Equal(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))

	// A date already on the target weekday maps to itself
	same := NextWeekday(sunday, time.Sunday)
	assert.True(t, same.Equal(sunday))

	thursday := NextWeekday(wed, time.Thursday)
	assert.True(t, thursday.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestBeginningOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 23:00 EST on Jan 5 is already Jan 6 in UTC
	local := time.Date(2025, 1, 5, 23, 0, 0, 0, loc)
	assert.True(t, BeginningOfDay(local).Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))

	utc := time.Date(2025, 1, 5, 15, 45, 30, 0, time.UTC)
	assert.True(t, BeginningOfDay(utc).Equal(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
}
