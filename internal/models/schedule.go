package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ScopeKind tags the owner of a schedule window.
type ScopeKind string

const (
	// ScopeSpace ties the window to a single space.
	ScopeSpace ScopeKind = "space"
	// ScopeResource ties the window to a single named resource.
	ScopeResource ScopeKind = "resource"
	// ScopeGlobal is the tenant-wide fallback used when a space or resource
	// has no windows of its own for a given day.
	ScopeGlobal ScopeKind = "global"
)

// ErrInvalidScope is returned when a scope is constructed with a zero ID.
var ErrInvalidScope = errors.New("schedule scope requires a non-zero id")

// ScheduleScope is a tagged variant: exactly one owner per schedule. A state
// with two owners set is unrepresentable; the database enforces the same rule
// with a CHECK constraint.
type ScheduleScope struct {
	Kind ScopeKind `json:"kind"`
	// ID is the space, resource, or tenant ID depending on Kind.
	ID uuid.UUID `json:"id"`
}

// NewSpaceScope scopes a schedule to a space.
func NewSpaceScope(spaceID uuid.UUID) (ScheduleScope, error) {
	if spaceID == uuid.Nil {
		return ScheduleScope{}, ErrInvalidScope
	}
	return ScheduleScope{Kind: ScopeSpace, ID: spaceID}, nil
}

// NewResourceScope scopes a schedule to a resource.
func NewResourceScope(resourceID uuid.UUID) (ScheduleScope, error) {
	if resourceID == uuid.Nil {
		return ScheduleScope{}, ErrInvalidScope
	}
	return ScheduleScope{Kind: ScopeResource, ID: resourceID}, nil
}

// NewGlobalScope scopes a schedule to the whole tenant.
func NewGlobalScope(tenantID uuid.UUID) (ScheduleScope, error) {
	if tenantID == uuid.Nil {
		return ScheduleScope{}, ErrInvalidScope
	}
	return ScheduleScope{Kind: ScopeGlobal, ID: tenantID}, nil
}

// Columns splits the scope into the three nullable foreign keys used by the
// schedules table.
func (s ScheduleScope) Columns() (tenantID, spaceID, resourceID *uuid.UUID) {
	id := s.ID
	switch s.Kind {
	case ScopeSpace:
		return nil, &id, nil
	case ScopeResource:
		return nil, nil, &id
	default:
		return &id, nil, nil
	}
}

// ScopeFromColumns rebuilds the tagged scope from the table's nullable
// columns. Exactly one of the three is expected to be set.
func ScopeFromColumns(tenantID, spaceID, resourceID *uuid.UUID) (ScheduleScope, error) {
	switch {
	case spaceID != nil:
		return NewSpaceScope(*spaceID)
	case resourceID != nil:
		return NewResourceScope(*resourceID)
	case tenantID != nil:
		return NewGlobalScope(*tenantID)
	}
	return ScheduleScope{}, ErrInvalidScope
}

// Schedule is a recurring weekly local-time window during which its scope
// accepts reservations. Times are wall-clock "HH:mm" in the tenant timezone;
// day 0 is Sunday. Exception rows mark date-specific deviations and are
// excluded from slot generation.
type Schedule struct {
	ID            uuid.UUID     `json:"id"`
	Scope         ScheduleScope `json:"scope"`
	DayOfWeek     int           `json:"day_of_week"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	IsException   bool          `json:"is_exception"`
	ExceptionDate *time.Time    `json:"exception_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
