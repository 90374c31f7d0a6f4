package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusNoShow    ReservationStatus = "NO_SHOW"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusNoShow, StatusCompleted:
		return true
	}
	return false
}

// Blocks reports whether a reservation in this status occupies its interval.
// Cancelled and no-show reservations never block slots or conflict checks.
func (s ReservationStatus) Blocks() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// Reservation holds one booked interval on a space (optionally a specific
// resource within it). Start/End are UTC instants; End is always after Start.
type Reservation struct {
	ID                 uuid.UUID         `json:"id"`
	TenantID           uuid.UUID         `json:"tenant_id"`
	SpaceID            uuid.UUID         `json:"space_id"`
	ResourceID         *uuid.UUID        `json:"resource_id,omitempty"`
	CustomerID         uuid.UUID         `json:"customer_id"`
	StartTime          time.Time         `json:"start_time"`
	EndTime            time.Time         `json:"end_time"`
	Status             ReservationStatus `json:"status"`
	Notes              string            `json:"notes,omitempty"`
	Unit               string            `json:"unit,omitempty"`
	Floor              string            `json:"floor,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledBy        string            `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	// Joined views, populated on detail endpoints.
	Customer *Customer `json:"customer,omitempty"`
	Space    *Space    `json:"space,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
}

// DayReservation is the sanitized public view of a reservation for the
// day grid: no customer identity, just occupied intervals.
type DayReservation struct {
	ID         uuid.UUID  `json:"id"`
	SpaceID    uuid.UUID  `json:"space_id"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
}
