package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tzBuenosAires = "America/Argentina/Buenos_Aires"

// 2026-03-06 is a Friday in Buenos Aires (UTC-3, no DST).
var fridayNoonUTC = time.Date(2026, 3, 6, 3, 0, 0, 0, time.UTC) // 00:00 local

func localInterval(h, m, durMin int) Interval {
	// Buenos Aires local time to UTC: +3h.
	start := time.Date(2026, 3, 6, h+3, m, 0, 0, time.UTC)
	return Interval{Start: start, End: start.Add(time.Duration(durMin) * time.Minute)}
}

func TestIntersects(t *testing.T) {
	base := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name           string
		a0, a1, b0, b1 int
		want           bool
	}{
		{"a starts inside b", 30, 90, 0, 60, true},
		{"a ends inside b", -30, 30, 0, 60, true},
		{"a contains b", -30, 90, 0, 60, true},
		{"identical", 0, 60, 0, 60, true},
		{"back to back before", -60, 0, 0, 60, false},
		{"back to back after", 60, 120, 0, 60, false},
		{"disjoint", 120, 180, 0, 60, false},
		{"zero length a", 30, 30, 0, 60, false},
		{"zero length b at boundary", 0, 60, 60, 60, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intersects(at(tt.a0), at(tt.a1), at(tt.b0), at(tt.b1))
			assert.Equal(t, tt.want, got)
			// Commutative.
			assert.Equal(t, got, Intersects(at(tt.b0), at(tt.b1), at(tt.a0), at(tt.a1)))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		h, m int
		ok   bool
	}{
		{"09:00", 9, 0, true},
		{"23:59", 23, 59, true},
		{"09:30:00", 9, 30, true},
		{" 10:15 ", 10, 15, true},
		{"24:00", 0, 0, false},
		{"10:60", 0, 0, false},
		{"ten thirty", 0, 0, false},
		{"10", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		h, m, ok := ParseClock(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.h, h, "input %q", tt.in)
			assert.Equal(t, tt.m, m, "input %q", tt.in)
		}
	}
}

func TestBuildSlots_FridayMorning(t *testing.T) {
	// Friday 09:00-12:00, 60 min duration, 30 min step, no reservations:
	// six slots, all available. The 11:30 candidate (11:30-12:30) is still
	// generated; the walk covers window starts, not window fit.
	now := fridayNoonUTC.Add(-24 * time.Hour)
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{{Start: "09:00", End: "12:00"}}, 60, 30, nil, now, nil)

	require.Len(t, slots, 6)
	wantTimes := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	for i, s := range slots {
		assert.Equal(t, wantTimes[i], s.Time)
		assert.True(t, s.Available, "slot %s", s.Time)
	}
}

func TestBuildSlots_ExistingReservationMarksOverlaps(t *testing.T) {
	// CONFIRMED reservation 10:00-11:00 local. With 60-min slots:
	// 09:00 (ends 10:00, back-to-back) stays available, 09:30 (ends 10:30)
	// overlaps, 10:00 and 10:30 overlap, 11:00 and 11:30 are clear.
	now := fridayNoonUTC.Add(-24 * time.Hour)
	busy := []Interval{localInterval(10, 0, 60)}
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{{Start: "09:00", End: "12:00"}}, 60, 30, busy, now, nil)

	require.Len(t, slots, 6)
	byTime := map[string]bool{}
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}
	assert.True(t, byTime["09:00"])
	assert.False(t, byTime["09:30"])
	assert.False(t, byTime["10:00"])
	assert.False(t, byTime["10:30"])
	assert.True(t, byTime["11:00"])
	assert.True(t, byTime["11:30"])
}

func TestBuildSlots_StartedSlotStillBookable(t *testing.T) {
	// A slot is past only once it has ENDED; one that started but has not
	// finished can still be booked.
	now := time.Date(2026, 3, 6, 12, 10, 0, 0, time.UTC) // 09:10 local
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{{Start: "08:00", End: "10:00"}}, 60, 30, nil, now, nil)

	require.Len(t, slots, 4)
	byTime := map[string]bool{}
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["08:00"]) // ended 09:00 local, before now
	assert.True(t, byTime["08:30"])  // ends 09:30 local, still running
	assert.True(t, byTime["09:00"])
	assert.True(t, byTime["09:30"])
}

func TestBuildSlots_MidnightWrap(t *testing.T) {
	// 22:00-02:00 wraps into the next calendar day: 22:00, 22:30, ... 01:30.
	now := fridayNoonUTC.Add(-24 * time.Hour)
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{{Start: "22:00", End: "02:00"}}, 60, 30, nil, now, nil)

	require.Len(t, slots, 8)
	assert.Equal(t, "00:00", slots[0].Time) // sorted by time-of-day
	assert.Equal(t, "23:30", slots[len(slots)-1].Time)
	for _, s := range slots {
		assert.True(t, s.Available, "slot %s", s.Time)
	}
}

func TestBuildSlots_InvalidWindowSkipped(t *testing.T) {
	now := fridayNoonUTC.Add(-24 * time.Hour)
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{
			{Start: "banana", End: "12:00"},
			{Start: "09:00", End: "10:00"},
		}, 30, 30, nil, now, nil)

	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "09:30", slots[1].Time)
}

func TestBuildSlots_DedupPrefersAvailable(t *testing.T) {
	// Overlapping windows emit the 10:00-10:30 band from both passes; the
	// result must carry each time exactly once.
	now := fridayNoonUTC.Add(-24 * time.Hour)
	slots := BuildSlots(2026, 3, 6, tzBuenosAires,
		[]Window{
			{Start: "09:00", End: "11:00"},
			{Start: "10:00", End: "12:00"},
		}, 30, 30, nil, now, nil)

	times := map[string]int{}
	for _, s := range slots {
		times[s.Time]++
	}
	for tm, n := range times {
		assert.Equal(t, 1, n, "time %s duplicated", tm)
	}
	require.Len(t, slots, 6) // 09:00..11:30
}

func TestBuildSlots_DedupKeepsAvailableOverUnavailable(t *testing.T) {
	// The wrapping window emits 00:00-01:30 on Saturday, where a reservation
	// blocks them; the plain window emits the same local times on Friday,
	// which is clear. The deduplicated entry for each time must be the
	// available one, even though the unavailable copy was produced first.
	now := fridayNoonUTC.Add(-24 * time.Hour)
	saturdayEarly := time.Date(2026, 3, 7, 3, 0, 0, 0, time.UTC) // Sat 00:00 local
	busy := []Interval{{Start: saturdayEarly, End: saturdayEarly.Add(2 * time.Hour)}}
	windows := []Window{
		{Start: "22:00", End: "02:00"},
		{Start: "00:00", End: "02:00"},
	}

	slots := BuildSlots(2026, 3, 6, tzBuenosAires, windows, 30, 30, busy, now, nil)

	require.Len(t, slots, 8) // 00:00..01:30 and 22:00..23:30, each once
	byTime := map[string]bool{}
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}
	for _, tm := range []string{"00:00", "00:30", "01:00", "01:30"} {
		assert.True(t, byTime[tm], "slot %s", tm)
	}

	// Without the Friday window the same times are genuinely blocked, so
	// the assertion above exercises the preference, not a no-op dedupe.
	wrapOnly := BuildSlots(2026, 3, 6, tzBuenosAires, windows[:1], 30, 30, busy, now, nil)
	for _, s := range wrapOnly {
		if s.Time < "22:00" {
			assert.False(t, s.Available, "slot %s", s.Time)
		}
	}
}

func TestBuildSlots_EmptyWindows(t *testing.T) {
	slots := BuildSlots(2026, 3, 6, tzBuenosAires, nil, 60, 30, nil, time.Now(), nil)
	assert.Empty(t, slots)
}
