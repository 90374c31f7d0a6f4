package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/config"
	"github.com/reservar-app/backend/internal/availability"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/internal/spaces"
)

type stubTenants struct {
	tz  string
	err error
}

func (s *stubTenants) GetTimezone(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return s.tz, s.err
}

type stubSpaces struct {
	space    *models.Space
	spaceErr error
	hasRes   bool
	resErr   error
}

func (s *stubSpaces) GetActiveSpace(ctx context.Context, spaceID, tenantID uuid.UUID) (*models.Space, error) {
	return s.space, s.spaceErr
}

func (s *stubSpaces) ResourceExists(ctx context.Context, resourceID, tenantID uuid.UUID) (bool, error) {
	return s.hasRes, s.resErr
}

type stubSchedules struct {
	byKind map[models.ScopeKind][]models.Schedule
	err    error
	calls  []models.ScopeKind
}

func (s *stubSchedules) ListForDay(ctx context.Context, scope models.ScheduleScope, dayOfWeek int) ([]models.Schedule, error) {
	s.calls = append(s.calls, scope.Kind)
	if s.err != nil {
		return nil, s.err
	}
	return s.byKind[scope.Kind], nil
}

type stubReservations struct {
	busy []availability.Interval
	err  error
}

func (s *stubReservations) ListBlockingForDay(ctx context.Context, tenantID, spaceID uuid.UUID, resourceID *uuid.UUID, year, month, day int) ([]availability.Interval, error) {
	return s.busy, s.err
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		SlotStepMinutes:        30,
		DuplicateWindowSeconds: 60,
		TxAcquireTimeoutSec:    10,
		TxExecTimeoutSec:       10,
		AvailabilityFailOpen:   true,
		DefaultTimezone:        "America/Argentina/Buenos_Aires",
	}
}

func newTestService(tn *stubTenants, sp *stubSpaces, sc *stubSchedules, rs *stubReservations, cfg config.BookingConfig) *AvailabilityService {
	svc := NewAvailabilityService(tn, sp, sc, rs, cfg, zap.NewNop())
	// Fixed clock, well before the test date, so no slot is in the past.
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func activeSpace() *models.Space {
	return &models.Space{ID: uuid.New(), Name: "SUM", DurationMinutes: 60, IsActive: true}
}

func spaceSchedules(windows ...[2]string) []models.Schedule {
	out := make([]models.Schedule, 0, len(windows))
	for _, w := range windows {
		out = append(out, models.Schedule{StartTime: w[0], EndTime: w[1]})
	}
	return out
}

func TestGetAvailability_HappyPath(t *testing.T) {
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeSpace: spaceSchedules([2]string{"09:00", "12:00"}),
	}}
	svc := newTestService(&stubTenants{tz: "America/Argentina/Buenos_Aires"}, &stubSpaces{space: activeSpace()}, sc, &stubReservations{}, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	require.Len(t, slots, 6)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "11:30", slots[5].Time)
	for _, s := range slots {
		assert.True(t, s.Available, s.Time)
	}
	assert.Equal(t, []models.ScopeKind{models.ScopeSpace}, sc.calls)
}

func TestGetAvailability_InvalidDate(t *testing.T) {
	svc := newTestService(&stubTenants{}, &stubSpaces{space: activeSpace()}, &stubSchedules{}, &stubReservations{}, testBookingConfig())

	// A malformed date is a caller error, never swallowed by fail-open.
	_, err := svc.compute(context.Background(), uuid.New(), uuid.New(), nil, "06-03-2026")
	assert.Error(t, err)
}

func TestGetAvailability_SpaceNotFound(t *testing.T) {
	svc := newTestService(&stubTenants{}, &stubSpaces{spaceErr: spaces.ErrNotFound}, &stubSchedules{}, &stubReservations{}, testBookingConfig())

	_, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAvailability_UnknownResourceNotFound(t *testing.T) {
	svc := newTestService(&stubTenants{}, &stubSpaces{space: activeSpace(), hasRes: false}, &stubSchedules{}, &stubReservations{}, testBookingConfig())

	resID := uuid.New()
	_, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), &resID, "2026-03-06")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAvailability_GlobalFallback(t *testing.T) {
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeGlobal: spaceSchedules([2]string{"10:00", "11:00"}),
	}}
	svc := newTestService(&stubTenants{tz: "UTC"}, &stubSpaces{space: activeSpace()}, sc, &stubReservations{}, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, []models.ScopeKind{models.ScopeSpace, models.ScopeGlobal}, sc.calls)
}

func TestGetAvailability_NoSchedulesEmptyGrid(t *testing.T) {
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{}}
	svc := newTestService(&stubTenants{}, &stubSpaces{space: activeSpace()}, sc, &stubReservations{}, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	assert.Empty(t, slots)
	// Scoped lookup first, then the tenant-wide fallback.
	assert.Equal(t, []models.ScopeKind{models.ScopeSpace, models.ScopeGlobal}, sc.calls)
}

func TestGetAvailability_TimezoneFallsBackToDefault(t *testing.T) {
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeSpace: spaceSchedules([2]string{"09:00", "10:00"}),
	}}
	// A busy interval at 12:00-13:00 UTC only covers the morning wall-clock
	// slots when the default UTC-3 zone is applied.
	rs := &stubReservations{busy: []availability.Interval{{
		Start: time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 13, 0, 0, 0, time.UTC),
	}}}
	svc := newTestService(&stubTenants{tz: "", err: errors.New("boom")}, &stubSpaces{space: activeSpace()}, sc, rs, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.False(t, slots[0].Available)
	assert.False(t, slots[1].Available)
}

func TestGetAvailability_FailOpenReturnsEmptyGrid(t *testing.T) {
	rs := &stubReservations{err: errors.New("connection refused")}
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeSpace: spaceSchedules([2]string{"09:00", "12:00"}),
	}}
	svc := newTestService(&stubTenants{}, &stubSpaces{space: activeSpace()}, sc, rs, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailability_FailClosedPropagates(t *testing.T) {
	cfg := testBookingConfig()
	cfg.AvailabilityFailOpen = false
	rs := &stubReservations{err: errors.New("connection refused")}
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeSpace: spaceSchedules([2]string{"09:00", "12:00"}),
	}}
	svc := newTestService(&stubTenants{}, &stubSpaces{space: activeSpace()}, sc, rs, cfg)

	_, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	assert.Error(t, err)
}

func TestGetAvailability_NotFoundNeverFailsOpen(t *testing.T) {
	// Fail-open must not mask a missing space as an empty grid with no error.
	svc := newTestService(&stubTenants{}, &stubSpaces{spaceErr: spaces.ErrNotFound}, &stubSchedules{}, &stubReservations{}, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	assert.Nil(t, slots)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAvailability_BusyIntervalMarksSlots(t *testing.T) {
	// 10:00-11:00 Buenos Aires is 13:00-14:00 UTC.
	rs := &stubReservations{busy: []availability.Interval{{
		Start: time.Date(2026, 3, 6, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 14, 0, 0, 0, time.UTC),
	}}}
	sc := &stubSchedules{byKind: map[models.ScopeKind][]models.Schedule{
		models.ScopeSpace: spaceSchedules([2]string{"09:00", "12:00"}),
	}}
	svc := newTestService(&stubTenants{tz: "America/Argentina/Buenos_Aires"}, &stubSpaces{space: activeSpace()}, sc, rs, testBookingConfig())

	slots, err := svc.GetAvailability(context.Background(), uuid.New(), uuid.New(), nil, "2026-03-06")
	require.NoError(t, err)
	require.Len(t, slots, 6)

	byTime := make(map[string]bool, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}
	assert.True(t, byTime["09:00"])
	assert.False(t, byTime["09:30"]) // 60-minute slot overlaps the booking
	assert.False(t, byTime["10:00"])
	assert.False(t, byTime["10:30"])
	assert.True(t, byTime["11:00"])
	assert.True(t, byTime["11:30"])
}

func TestParseDate(t *testing.T) {
	y, m, d, err := ParseDate("2026-03-06")
	require.NoError(t, err)
	assert.Equal(t, 2026, y)
	assert.Equal(t, 3, m)
	assert.Equal(t, 6, d)

	_, _, _, err = ParseDate("2026-13-40")
	assert.Error(t, err)
}
