// Package timeclock holds the pure time math for the accounting core:
// recurring quota-cycle boundaries and decimal-minute duration arithmetic.
package timeclock

import (
	"fmt"
	"time"
)

// Schedule is a recurring weekly instant: a weekday plus a time of day as
// observed in an IANA timezone. The location is resolved once at construction
// so callers can treat boundary computation as infallible.
type Schedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Second   int
	Timezone string

	loc *time.Location
}

func NewSchedule(weekday time.Weekday, hour, minute, second int, timezone string) (Schedule, error) {
	if weekday < time.Sunday || weekday > time.Saturday {
		return Schedule{}, fmt.Errorf("day of week must be 0-6, got %d", weekday)
	}
	if hour < 0 || hour > 23 {
		return Schedule{}, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return Schedule{}, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if second < 0 || second > 59 {
		return Schedule{}, fmt.Errorf("second must be 0-59, got %d", second)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Schedule{
		Weekday:  weekday,
		Hour:     hour,
		Minute:   minute,
		Second:   second,
		Timezone: timezone,
		loc:      loc,
	}, nil
}

// Location returns the resolved timezone.
func (s Schedule) Location() *time.Location {
	return s.loc
}

// NextBoundary returns the next occurrence of the schedule strictly after
// now, as an absolute instant.
//
// The calendar walk happens entirely in the schedule's location: now is
// rendered into local fields, the day offset to the target weekday is
// computed there, and the candidate wall-clock time is rebuilt with
// time.Date in the same location. time.Date re-resolves the UTC offset for
// the candidate date, so a DST transition between now and the boundary
// cannot skew the result; the returned instant always reads as the
// configured local time of day.
func (s Schedule) NextBoundary(now time.Time) time.Time {
	local := now.In(s.loc)

	days := (int(s.Weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days,
		s.Hour, s.Minute, s.Second, 0, s.loc)

	// Same weekday with the target time already passed (or hit exactly)
	// rolls a full week forward; a same-day target still ahead keeps the
	// zero-day offset.
	if !candidate.After(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+days+7,
			s.Hour, s.Minute, s.Second, 0, s.loc)
	}

	return candidate
}

// Millis converts an instant to the epoch-millisecond representation the
// ledgers persist.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis is the inverse of Millis, in UTC.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
