package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/config"
	"github.com/reservar-app/backend/internal/availability"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/internal/spaces"
	"github.com/reservar-app/backend/internal/timezone"
)

// Narrow read interfaces over the concrete repositories, so availability can
// be tested without a database.

// TenantSource resolves a tenant's configured timezone.
type TenantSource interface {
	// GetTimezone returns the tenant's IANA zone name, empty when unset.
	GetTimezone(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SpaceSource resolves spaces and resources for ownership checks.
type SpaceSource interface {
	// GetActiveSpace returns the space only when it belongs to the tenant
	// and is active.
	GetActiveSpace(ctx context.Context, spaceID, tenantID uuid.UUID) (*models.Space, error)
	// ResourceExists reports whether the resource belongs to the tenant.
	ResourceExists(ctx context.Context, resourceID, tenantID uuid.UUID) (bool, error)
}

// ScheduleSource lists weekly windows for one scope and day.
type ScheduleSource interface {
	// ListForDay returns non-exception schedules for the scope on the given
	// local day-of-week (0=Sunday).
	ListForDay(ctx context.Context, scope models.ScheduleScope, dayOfWeek int) ([]models.Schedule, error)
}

// ReservationSource reads the busy intervals for one space+resource and day.
type ReservationSource interface {
	ListBlockingForDay(ctx context.Context, tenantID, spaceID uuid.UUID, resourceID *uuid.UUID, year, month, day int) ([]availability.Interval, error)
}

// AvailabilityService resolves schedules and generates the slot grid for one
// date. Queries never block bookings and never mutate state; a slot shown
// available may be taken by the time the booking request lands, and the
// booking transaction re-checks authoritatively.
type AvailabilityService struct {
	tenants      TenantSource
	spaces       SpaceSource
	schedules    ScheduleSource
	reservations ReservationSource
	cfg          config.BookingConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewAvailabilityService creates an availability service.
func NewAvailabilityService(
	tenants TenantSource,
	spaces SpaceSource,
	schedules ScheduleSource,
	reservations ReservationSource,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		tenants:      tenants,
		spaces:       spaces,
		schedules:    schedules,
		reservations: reservations,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// ParseDate validates a "YYYY-MM-DD" calendar date.
func ParseDate(date string) (year, month, day int, err error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// GetAvailability returns the ordered slot grid for a space (optionally a
// resource) on one tenant-local calendar date.
//
// An unknown or inactive space, or a foreign resource, is always ErrNotFound.
// When no schedule covers the day the result is an empty grid, not an error.
// Any other internal fault degrades to an empty grid when the fail-open flag
// is set: the booking page stays usable and the booking transaction remains
// the source of truth.
func (s *AvailabilityService) GetAvailability(ctx context.Context, tenantID, spaceID uuid.UUID, resourceID *uuid.UUID, date string) ([]availability.Slot, error) {
	slots, err := s.compute(ctx, tenantID, spaceID, resourceID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if s.cfg.AvailabilityFailOpen {
			s.logger.Error("availability computation failed, returning empty grid",
				zap.String("tenant_id", tenantID.String()),
				zap.String("space_id", spaceID.String()),
				zap.String("date", date),
				zap.Error(err))
			return []availability.Slot{}, nil
		}
		return nil, err
	}
	return slots, nil
}

func (s *AvailabilityService) compute(ctx context.Context, tenantID, spaceID uuid.UUID, resourceID *uuid.UUID, date string) ([]availability.Slot, error) {
	year, month, day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	tz, err := s.tenants.GetTimezone(ctx, tenantID)
	if err != nil || tz == "" {
		// Documented default, not a silent bug.
		tz = s.cfg.DefaultTimezone
	}

	dayOfWeek, err := timezone.DayOfWeekLocal(year, month, day, tz)
	if err != nil {
		return nil, fmt.Errorf("resolve day of week: %w", err)
	}

	space, err := s.spaces.GetActiveSpace(ctx, spaceID, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, spaces.ErrNotFound) {
			return nil, fmt.Errorf("%w: space not found", ErrNotFound)
		}
		return nil, err
	}

	var scoped []models.Schedule
	if resourceID == nil {
		spaceScope, err := models.NewSpaceScope(spaceID)
		if err != nil {
			return nil, err
		}
		scoped, err = s.schedules.ListForDay(ctx, spaceScope, dayOfWeek)
		if err != nil {
			return nil, err
		}
	} else {
		ok, err := s.spaces.ResourceExists(ctx, *resourceID, tenantID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: resource not found", ErrNotFound)
		}
		resourceScope, err := models.NewResourceScope(*resourceID)
		if err != nil {
			return nil, err
		}
		scoped, err = s.schedules.ListForDay(ctx, resourceScope, dayOfWeek)
		if err != nil {
			return nil, err
		}
	}

	schedules := scoped
	if len(schedules) == 0 {
		globalScope, err := models.NewGlobalScope(tenantID)
		if err != nil {
			return nil, err
		}
		schedules, err = s.schedules.ListForDay(ctx, globalScope, dayOfWeek)
		if err != nil {
			return nil, err
		}
	}
	if len(schedules) == 0 {
		// No availability configured for this day.
		return []availability.Slot{}, nil
	}

	busy, err := s.reservations.ListBlockingForDay(ctx, tenantID, spaceID, resourceID, year, month, day)
	if err != nil {
		return nil, err
	}

	windows := make([]availability.Window, 0, len(schedules))
	for _, sch := range schedules {
		windows = append(windows, availability.Window{Start: sch.StartTime, End: sch.EndTime})
	}

	return availability.BuildSlots(year, month, day, tz, windows,
		space.DurationMinutes, s.cfg.SlotStepMinutes, busy, s.now().UTC(), s.logger), nil
}
