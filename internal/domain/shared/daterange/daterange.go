package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire layout for calendar days.
const DayLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDay   = errors.New("daterange: invalid calendar day")
)

// DateRange represents a half-open interval [checkIn, checkOut) of calendar days.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both bounds to UTC midnight and validates the result.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two "YYYY-MM-DD" strings.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

// ParseDay parses a calendar day. RFC3339 timestamps are accepted and truncated.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDay
	}
	if t, err := time.Parse(DayLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
}

// Day returns t's calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the calendar-day difference between checkout and checkin.
// It counts whole days on the Unix timeline, so spans longer than a
// time.Duration can hold are still exact.
func (dr DateRange) Nights() int {
	in, out := Day(dr.CheckIn), Day(dr.CheckOut)
	if in.IsZero() || out.IsZero() {
		return 0
	}
	return int((out.Unix() - in.Unix()) / secondsPerDay)
}

// Overlaps reports half-open overlap: a checkout on another's checkin day is not an overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !(dr.Overlaps(other) || dr.Adjacent(other)) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if other.CheckIn.Before(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.After(end) {
		end = other.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}

// Days lists every calendar day in [CheckIn, CheckOut).
func (dr DateRange) Days() []time.Time {
	n := dr.Nights()
	if n <= 0 {
		return nil
	}
	start := Day(dr.CheckIn)
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

func (dr DateRange) String() string {
	return dr.CheckIn.Format(DayLayout) + " to " + dr.CheckOut.Format(DayLayout)
}
