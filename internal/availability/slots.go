// Package availability generates bookable time slots from weekly schedule
// windows. All computation is pure: callers supply the date, timezone,
// existing blocking reservations and the current instant.
package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/timezone"
)

const minutesPerDay = 24 * 60

// Window is one resolved schedule window in tenant-local wall-clock time.
type Window struct {
	Start string // "HH:mm" or "HH:mm:ss"
	End   string
}

// Slot is one candidate reservation time shown to a caller.
type Slot struct {
	Time      string `json:"time"` // local "HH:mm"
	Available bool   `json:"available"`
}

// Interval is a half-open UTC interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Intersects reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) overlap. Three cases: a starts inside b, a ends inside b,
// or a fully contains b. Back-to-back intervals (aEnd == bStart) do not
// overlap.
func Intersects(aStart, aEnd, bStart, bEnd time.Time) bool {
	// Empty intervals never overlap anything.
	if !aEnd.After(aStart) || !bEnd.After(bStart) {
		return false
	}
	return (!aStart.Before(bStart) && aStart.Before(bEnd)) ||
		(aEnd.After(bStart) && !aEnd.After(bEnd)) ||
		(!aStart.After(bStart) && !aEnd.Before(bEnd))
}

func intersectsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Intersects(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// ParseClock parses "HH:mm" or "HH:mm:ss" into hour and minute.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// clockMinutes converts "HH:mm" to minutes since midnight, defensively
// returning 0 for malformed input (used only as a sort key).
func clockMinutes(s string) int {
	h, m, ok := ParseClock(s)
	if !ok {
		return 0
	}
	return h*60 + m
}

// BuildSlots expands the given windows into fixed-step candidate slots for
// one tenant-local calendar date.
//
// Each candidate covers [start, start+duration) converted to UTC. A candidate
// is unavailable when it intersects a busy interval, or when it has already
// ended; a slot stays bookable while in progress. Windows whose
// end is numerically <= start wrap past midnight into the next calendar day.
// Malformed window times are skipped with a warning, never fatal.
//
// The result is deduplicated by local time (an available entry wins over an
// unavailable one for the same time) and sorted ascending.
func BuildSlots(
	year, month, day int,
	tz string,
	windows []Window,
	durationMin, stepMin int,
	busy []Interval,
	now time.Time,
	logger *zap.Logger,
) []Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if durationMin <= 0 {
		durationMin = 30
	}
	if stepMin <= 0 {
		stepMin = 30
	}
	duration := time.Duration(durationMin) * time.Minute

	var slots []Slot
	for _, w := range windows {
		sh, sm, okStart := ParseClock(w.Start)
		eh, em, okEnd := ParseClock(w.End)
		if !okStart || !okEnd {
			logger.Warn("invalid schedule window, skipping",
				zap.String("start", w.Start), zap.String("end", w.End))
			continue
		}

		startMinutes := sh*60 + sm
		endMinutes := eh*60 + em
		if endMinutes <= startMinutes {
			// e.g. 22:00-02:00 spans into the next calendar day.
			endMinutes += minutesPerDay
		}

		for cur := startMinutes; cur < endMinutes; cur += stepMin {
			h := (cur % minutesPerDay) / 60
			m := cur % 60
			timeStr := fmt.Sprintf("%02d:%02d", h, m)

			dayOffset := 0
			if cur >= minutesPerDay {
				dayOffset = 1
			}
			slotStart, err := timezone.LocalToUTC(year, month, day+dayOffset, h, m, tz)
			if err != nil {
				logger.Warn("slot conversion failed, skipping window",
					zap.String("tz", tz), zap.Error(err))
				break
			}
			slotEnd := slotStart.Add(duration)

			hasConflict := intersectsAny(slotStart, slotEnd, busy)
			isPast := slotEnd.Before(now)

			slots = append(slots, Slot{Time: timeStr, Available: !hasConflict && !isPast})
		}
	}

	// Overlapping windows can emit the same local time twice; keep one entry
	// per time, preferring available=true.
	unique := make(map[string]Slot, len(slots))
	for _, s := range slots {
		existing, seen := unique[s.Time]
		if !seen || (s.Available && !existing.Available) {
			unique[s.Time] = s
		}
	}
	out := make([]Slot, 0, len(unique))
	for _, s := range unique {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return clockMinutes(out[i].Time) < clockMinutes(out[j].Time)
	})
	return out
}
