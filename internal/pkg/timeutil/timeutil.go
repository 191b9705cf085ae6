package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LoadLocation resolves an IANA timezone name, falling back to UTC when the
// name is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseWallClock parses an "HH:MM" wall-clock string.
func ParseWallClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// CombineWallClock takes the calendar date of reference in loc, substitutes
// the supplied hour/minute (seconds and below zeroed), and returns the
// resulting instant in UTC. The reference must be converted into the
// employee's zone before the date component is read; applying the wall-clock
// time to the UTC date directly shifts the result by the zone offset twice
// across DST boundaries.
func CombineWallClock(reference time.Time, hour, minute int, loc *time.Location) time.Time {
	refLocal := reference.In(loc)
	return time.Date(refLocal.Year(), refLocal.Month(), refLocal.Day(), hour, minute, 0, 0, loc).UTC()
}

// DaysSince returns the number of local calendar days elapsed from t to now
// in loc. Same local date yields 0.
func DaysSince(t, now time.Time, loc *time.Location) int {
	tl := t.In(loc)
	nl := now.In(loc)
	tDay := time.Date(tl.Year(), tl.Month(), tl.Day(), 0, 0, 0, 0, time.UTC)
	nDay := time.Date(nl.Year(), nl.Month(), nl.Day(), 0, 0, 0, 0, time.UTC)
	return int(nDay.Sub(tDay).Hours() / 24)
}

// SameLocalDay reports whether a and b fall on the same calendar day in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	al := a.In(loc)
	bl := b.In(loc)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// DurationMinutes returns the whole minutes between start and end, rounded
// down.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
