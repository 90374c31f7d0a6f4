package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeHours(t *testing.T) {
	tests := []struct {
		name    string
		windows [][2]string
		want    ScheduleRange
	}{
		{
			name:    "no windows renders the full day",
			windows: nil,
			want:    ScheduleRange{StartHour: 0, EndHour: 24},
		},
		{
			name:    "single window",
			windows: [][2]string{{"09:00", "18:00"}},
			want:    ScheduleRange{StartHour: 9, EndHour: 18},
		},
		{
			name:    "multiple windows take min start and max end",
			windows: [][2]string{{"14:00", "20:00"}, {"08:30", "12:00"}},
			want:    ScheduleRange{StartHour: 8, EndHour: 20},
		},
		{
			name:    "partial end hour rounds up",
			windows: [][2]string{{"09:00", "17:30"}},
			want:    ScheduleRange{StartHour: 9, EndHour: 18},
		},
		{
			name:    "midnight wrap extends to end of day",
			windows: [][2]string{{"22:00", "02:00"}},
			want:    ScheduleRange{StartHour: 22, EndHour: 24},
		},
		{
			name:    "unparsable windows are skipped",
			windows: [][2]string{{"garbage", "12:00"}, {"10:00", "16:00"}},
			want:    ScheduleRange{StartHour: 10, EndHour: 16},
		},
		{
			name:    "only unparsable windows fall back to full day",
			windows: [][2]string{{"", ""}},
			want:    ScheduleRange{StartHour: 0, EndHour: 24},
		},
		{
			name:    "seconds in clock strings are accepted",
			windows: [][2]string{{"09:00:00", "13:00:00"}},
			want:    ScheduleRange{StartHour: 9, EndHour: 13},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangeHours(tt.windows))
		})
	}
}
