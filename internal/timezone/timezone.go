// Package timezone converts between a tenant's IANA wall-clock time and UTC
// instants. All functions are pure and independent of the host process's own
// timezone: conversions always go through an explicit zone name, never
// time.Local.
package timezone

import (
	"fmt"
	"time"
)

// OffsetMinutes returns the minutes to add to a UTC midnight instant to reach
// the zone's local midnight for the given calendar date. The offset is derived
// from a fixed UTC noon instant, which sidesteps ambiguity around DST
// transitions that typically happen near midnight.
func OffsetMinutes(year, month, day int, tz string) (int, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, fmt.Errorf("load location %q: %w", tz, err)
	}
	utcNoon := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	_, offsetSec := utcNoon.In(loc).Zone()
	// The zone offset is east-of-UTC; the minutes to reach local midnight
	// from UTC midnight run the other way. Sampling the zone at noon stays
	// clear of DST transitions and cannot wrap into a neighboring day, even
	// for zones beyond UTC+12.
	return -offsetSec / 60, nil
}

// DayOfWeekLocal returns the weekday (0=Sunday..6=Saturday) of the given
// calendar date as experienced in the zone.
func DayOfWeekLocal(year, month, day int, tz string) (int, error) {
	offset, err := OffsetMinutes(year, month, day, tz)
	if err != nil {
		return 0, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, fmt.Errorf("load location %q: %w", tz, err)
	}
	// Local midnight as a UTC instant, then read its weekday in the zone.
	midnight := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(offset) * time.Minute)
	return int(midnight.In(loc).Weekday()), nil
}

// LocalToUTC converts a wall-clock time on a calendar date in the zone to the
// UTC instant it represents. Out-of-range day values (e.g. day 32) normalize
// into the following month, which lets callers express past-midnight windows
// as date+1.
func LocalToUTC(year, month, day, hour, minute int, tz string) (time.Time, error) {
	offset, err := OffsetMinutes(year, month, day, tz)
	if err != nil {
		return time.Time{}, err
	}
	utcMidnight := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return utcMidnight.Add(time.Duration(offset+hour*60+minute) * time.Minute), nil
}

// LocalTimeString formats a UTC instant as "HH:mm" wall-clock time in the zone.
func LocalTimeString(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("load location %q: %w", tz, err)
	}
	return t.In(loc).Format("15:04"), nil
}
