package timezone

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetMinutes(t *testing.T) {
	// The offset is the minutes from a UTC midnight instant to the zone's
	// local midnight, so it carries the opposite sign of the usual UTC
	// offset notation: Buenos Aires midnight is 03:00 UTC, Tokyo midnight
	// is 15:00 UTC the previous day.
	tests := []struct {
		name    string
		y, m, d int
		tz      string
		want    int
	}{
		{"buenos aires is UTC-3 year round", 2026, 3, 6, "America/Argentina/Buenos_Aires", 180},
		{"utc has no offset", 2026, 3, 6, "UTC", 0},
		{"new york standard time", 2026, 1, 15, "America/New_York", 300},
		{"new york daylight time", 2026, 7, 15, "America/New_York", 240},
		{"tokyo", 2026, 7, 15, "Asia/Tokyo", -540},
		{"kolkata half-hour offset", 2026, 7, 15, "Asia/Kolkata", -330},
		{"auckland daylight time is UTC+13", 2026, 3, 6, "Pacific/Auckland", -780},
		{"kiritimati is UTC+14", 2026, 3, 6, "Pacific/Kiritimati", -840},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetMinutes(tt.y, tt.m, tt.d, tt.tz)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOffsetMinutes_UnknownZone(t *testing.T) {
	_, err := OffsetMinutes(2026, 1, 1, "Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestDayOfWeekLocal(t *testing.T) {
	// 2026-03-06 is a Friday in UTC. In Buenos Aires (UTC-3) it is also a
	// Friday; in Auckland (UTC+13 in March) 2026-03-06 is still Friday as a
	// civil date. The weekday is a property of the local calendar date.
	tests := []struct {
		y, m, d int
		tz      string
		want    int
	}{
		{2026, 3, 6, "America/Argentina/Buenos_Aires", 5},
		{2026, 3, 6, "UTC", 5},
		{2026, 3, 6, "Pacific/Auckland", 5},
		{2026, 3, 6, "Pacific/Kiritimati", 5},
		{2026, 3, 8, "America/Argentina/Buenos_Aires", 0}, // Sunday
		{2026, 3, 7, "Asia/Tokyo", 6},                     // Saturday
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%04d-%02d-%02d_%s", tt.y, tt.m, tt.d, tt.tz), func(t *testing.T) {
			got, err := DayOfWeekLocal(tt.y, tt.m, tt.d, tt.tz)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalToUTC(t *testing.T) {
	// 09:00 Buenos Aires == 12:00 UTC.
	got, err := LocalToUTC(2026, 3, 6, 9, 0, "America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), got)

	// 09:00 in Auckland (UTC+13) is 20:00 UTC on the previous calendar day.
	got, err = LocalToUTC(2026, 3, 6, 9, 0, "Pacific/Auckland")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 20, 0, 0, 0, time.UTC), got)

	// Day 32 normalizes into the next month (midnight-wrapping windows).
	got, err = LocalToUTC(2026, 1, 32, 1, 30, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 1, 30, 0, 0, time.UTC), got)
}

func TestRoundTrip(t *testing.T) {
	// utcToLocal(localToUTC(x)) == x for any valid wall-clock input,
	// regardless of the host timezone.
	zones := []string{
		"America/Argentina/Buenos_Aires",
		"UTC",
		"America/New_York",
		"Asia/Kolkata",
		"Pacific/Auckland",
	}
	for _, tz := range zones {
		for _, hm := range [][2]int{{0, 0}, {9, 30}, {13, 0}, {23, 30}} {
			in, err := LocalToUTC(2026, 3, 6, hm[0], hm[1], tz)
			require.NoError(t, err)
			out, err := LocalTimeString(in, tz)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%02d:%02d", hm[0], hm[1]), out, "zone %s", tz)
		}
	}
}

func TestRoundTrip_HostTZIndependent(t *testing.T) {
	// Force an odd process timezone; results must not change.
	orig := time.Local
	defer func() { time.Local = orig }()
	loc, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)
	time.Local = loc

	got, err := LocalToUTC(2026, 3, 6, 9, 0, "America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), got)

	s, err := LocalTimeString(got, "America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	assert.Equal(t, "09:00", s)
}
