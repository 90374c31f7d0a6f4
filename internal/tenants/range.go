package tenants

import "github.com/reservar-app/backend/internal/availability"

// ScheduleRange is the hour band the public booking grid renders, derived
// from every window the tenant has configured.
type ScheduleRange struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// RangeHours folds schedule windows into the earliest start hour and latest
// end hour. Windows wrapping past midnight extend the end past their start.
// No usable windows means the full 0-24 band.
func RangeHours(windows [][2]string) ScheduleRange {
	minStart := 24 * 60
	maxEnd := 0
	for _, w := range windows {
		sh, sm, ok := availability.ParseClock(w[0])
		if !ok {
			continue
		}
		eh, em, ok := availability.ParseClock(w[1])
		if !ok {
			continue
		}
		start := sh*60 + sm
		end := eh*60 + em
		if end <= start {
			end += 24 * 60
		}
		if start < minStart {
			minStart = start
		}
		if end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd == 0 {
		return ScheduleRange{StartHour: 0, EndHour: 24}
	}
	endHour := (maxEnd + 59) / 60
	if endHour > 24 {
		endHour = 24
	}
	return ScheduleRange{StartHour: minStart / 60, EndHour: endHour}
}
