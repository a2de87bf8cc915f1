package types

import (
	"fmt"
	"time"
)

// DateRange is an inclusive calendar date range. Both bounds are normalized
// to midnight UTC; the hours within the end date belong to the range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both bounds to midnight UTC
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: BeginningOfDay(start), End: BeginningOfDay(end)}
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range bounds must be set")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("date range end %s before start %s", r.End.Format(time.DateOnly), r.Start.Format(time.DateOnly))
	}
	return nil
}

// Days returns the number of calendar days covered by the range, inclusive
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether d falls within the range
func (r DateRange) Contains(d time.Time) bool {
	d = BeginningOfDay(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// Subwindows splits the range into chronological subranges of at most
// sizeDays days each. The upstream scheduling API caps a single fetch
// window, so larger requested ranges are always decomposed before loading.
// Chronological order keeps partial-failure resumption well-defined.
func (r DateRange) Subwindows(sizeDays int) []DateRange {
	if sizeDays <= 0 {
		return []DateRange{r}
	}

	var windows []DateRange
	cursor := r.Start
	for !cursor.After(r.End) {
		end := cursor.AddDate(0, 0, sizeDays-1)
		if end.After(r.End) {
			end = r.End
		}
		windows = append(windows, DateRange{Start: cursor, End: end})
		cursor = end.AddDate(0, 0, 1)
	}
	return windows
}

// BeginningOfDay truncates t to midnight UTC
func BeginningOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextWeekday returns t if it already falls on the given weekday,
// otherwise the next calendar day that does.
func NextWeekday(t time.Time, day time.Weekday) time.Time {
	t = BeginningOfDay(t)
	offset := (int(day) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset)
}
