package reservations

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/config"
	"github.com/reservar-app/backend/internal/availability"
	"github.com/reservar-app/backend/internal/models"
)

// lockTimeoutSQLState is raised when SET LOCAL lock_timeout expires while
// waiting on the advisory lock.
const lockTimeoutSQLState = "55P03"

// blockingStatuses appears inline in every conflict query: cancelled and
// no-show reservations never block.
const blockingStatuses = `status NOT IN ('CANCELLED', 'NO_SHOW')`

// Repository handles reservation persistence, including the serialized
// booking transaction.
type Repository struct {
	pool *pgxpool.Pool
	cfg  config.BookingConfig
}

// NewRepository creates a reservations repository.
func NewRepository(pool *pgxpool.Pool, cfg config.BookingConfig) *Repository {
	return &Repository{pool: pool, cfg: cfg}
}

// CreateInput carries one booking request into the transaction.
type CreateInput struct {
	TenantID   uuid.UUID
	SpaceID    uuid.UUID
	ResourceID *uuid.UUID

	CustomerFirstName string
	CustomerLastName  string
	CustomerEmail     string
	CustomerPhone     string

	Start  time.Time
	End    *time.Time // nil means start + space duration
	Status models.ReservationStatus
	Notes  string
	Unit   string
	Floor  string
}

// lockKey derives the advisory-lock key that serializes bookings targeting
// the same (tenant, space, resource). A nil resource hashes differently from
// any concrete resource, so "the space itself" has its own lane.
func lockKey(tenantID, spaceID uuid.UUID, resourceID *uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(tenantID[:])
	h.Write([]byte{'|'})
	h.Write(spaceID[:])
	h.Write([]byte{'|'})
	if resourceID != nil {
		h.Write(resourceID[:])
	}
	return int64(h.Sum64())
}

// asTimeout rewrites lock-wait and budget expiries as ErrTimeout, leaving
// every other error untouched.
func asTimeout(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == lockTimeoutSQLState {
		return fmt.Errorf("%w: lock wait exceeded", ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: transaction budget exceeded", ErrTimeout)
	}
	return err
}

// CreateReservation books one slot atomically. The whole unit of work runs
// under an execution budget; the advisory lock wait is separately bounded by
// lock_timeout. Either expiry surfaces as ErrTimeout, which is safe to retry.
//
// Inside the lock: load the active space, compute the end instant,
// find-or-create the customer, reject near-duplicate submits by the same
// customer, reject any overlapping reservation on the same space+resource,
// then insert. Conflict checks and the insert share the lock, so two
// concurrent requests for an overlapping interval cannot both pass.
func (r *Repository) CreateReservation(ctx context.Context, in CreateInput) (*models.Reservation, error) {
	txCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.TxExecTimeoutSec)*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(txCtx)
	if err != nil {
		return nil, asTimeout(err)
	}
	defer tx.Rollback(context.Background())

	if _, err := tx.Exec(txCtx,
		fmt.Sprintf("SET LOCAL lock_timeout = '%ds'", r.cfg.TxAcquireTimeoutSec)); err != nil {
		return nil, asTimeout(err)
	}
	if _, err := tx.Exec(txCtx, "SELECT pg_advisory_xact_lock($1)",
		lockKey(in.TenantID, in.SpaceID, in.ResourceID)); err != nil {
		return nil, asTimeout(err)
	}

	// An inactive tenant hides its spaces, so deactivation stops bookings too.
	var space models.Space
	err = tx.QueryRow(txCtx,
		`SELECT id, tenant_id, name, duration_minutes FROM spaces
		WHERE id = $1 AND tenant_id = $2 AND is_active = true
		  AND EXISTS (SELECT 1 FROM tenants t WHERE t.id = $2 AND t.is_active = true)`,
		in.SpaceID, in.TenantID).
		Scan(&space.ID, &space.TenantID, &space.Name, &space.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: space not found", ErrNotFound)
		}
		return nil, asTimeout(err)
	}

	if in.ResourceID != nil {
		var exists bool
		err = tx.QueryRow(txCtx,
			`SELECT EXISTS (SELECT 1 FROM resources WHERE id = $1 AND tenant_id = $2)`,
			*in.ResourceID, in.TenantID).Scan(&exists)
		if err != nil {
			return nil, asTimeout(err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: resource not found", ErrNotFound)
		}
	}

	start := in.Start.UTC()
	var end time.Time
	if in.End != nil {
		end = in.End.UTC()
		if !end.After(start) {
			return nil, fmt.Errorf("%w: end time must be after start time", ErrConflict)
		}
	} else {
		end = start.Add(time.Duration(space.DurationMinutes) * time.Minute)
	}

	var customerID uuid.UUID
	err = tx.QueryRow(txCtx,
		`INSERT INTO customers (id, tenant_id, email, first_name, last_name, phone)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		in.TenantID, in.CustomerEmail, in.CustomerFirstName, in.CustomerLastName, in.CustomerPhone).
		Scan(&customerID)
	if err != nil {
		return nil, asTimeout(err)
	}

	// Same customer, same space+resource, start within the duplicate window:
	// treated as an accidental double-submit.
	window := time.Duration(r.cfg.DuplicateWindowSeconds) * time.Second
	var duplicate bool
	err = tx.QueryRow(txCtx,
		`SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE tenant_id = $1 AND customer_id = $2 AND space_id = $3
			  AND resource_id IS NOT DISTINCT FROM $4
			  AND `+blockingStatuses+`
			  AND start_time BETWEEN $5 AND $6
		)`,
		in.TenantID, customerID, in.SpaceID, in.ResourceID,
		start.Add(-window), start.Add(window)).Scan(&duplicate)
	if err != nil {
		return nil, asTimeout(err)
	}
	if duplicate {
		return nil, fmt.Errorf("%w: you already hold a reservation at this time", ErrConflict)
	}

	// Three-case interval intersection against every blocking reservation on
	// the same space+resource: an existing interval covers our start, covers
	// our end, or sits fully inside ours. Back-to-back does not conflict.
	var overlapping bool
	err = tx.QueryRow(txCtx,
		`SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE tenant_id = $1 AND space_id = $2
			  AND resource_id IS NOT DISTINCT FROM $3
			  AND `+blockingStatuses+`
			  AND (
				(start_time <= $4 AND end_time > $4) OR
				(start_time < $5 AND end_time >= $5) OR
				(start_time >= $4 AND end_time <= $5)
			  )
		)`,
		in.TenantID, in.SpaceID, in.ResourceID, start, end).Scan(&overlapping)
	if err != nil {
		return nil, asTimeout(err)
	}
	if overlapping {
		return nil, fmt.Errorf("%w: this time slot is already reserved", ErrConflict)
	}

	status := in.Status
	if status == "" {
		status = models.StatusPending
	}

	res := &models.Reservation{
		TenantID:   in.TenantID,
		SpaceID:    in.SpaceID,
		ResourceID: in.ResourceID,
		CustomerID: customerID,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
		Notes:      in.Notes,
		Unit:       in.Unit,
		Floor:      in.Floor,
	}
	err = tx.QueryRow(txCtx,
		`INSERT INTO reservations
			(id, tenant_id, space_id, resource_id, customer_id, start_time, end_time, status, notes, unit, floor)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		res.TenantID, res.SpaceID, res.ResourceID, res.CustomerID,
		res.StartTime, res.EndTime, res.Status, res.Notes, res.Unit, res.Floor).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, asTimeout(err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, asTimeout(err)
	}

	// Re-read outside the budgeted context to return the joined view.
	full, err := r.GetByID(ctx, res.ID, in.TenantID)
	if err != nil {
		// The booking itself committed; fall back to the bare row.
		return res, nil
	}
	return full, nil
}

const reservationJoinQuery = `
	SELECT r.id, r.tenant_id, r.space_id, r.resource_id, r.customer_id,
		r.start_time, r.end_time, r.status,
		COALESCE(r.notes, ''), COALESCE(r.unit, ''), COALESCE(r.floor, ''),
		r.cancelled_at, COALESCE(r.cancellation_reason, ''), COALESCE(r.cancelled_by, ''),
		r.created_at, r.updated_at,
		c.id, c.tenant_id, c.email, c.first_name, c.last_name, COALESCE(c.phone, ''),
		s.id, s.tenant_id, s.name, s.duration_minutes, s.is_active,
		p.id, p.first_name, COALESCE(p.last_name, ''), p.full_name
	FROM reservations r
	JOIN customers c ON c.id = r.customer_id
	JOIN spaces s ON s.id = r.space_id
	LEFT JOIN resources p ON p.id = r.resource_id`

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var res models.Reservation
	var cust models.Customer
	var space models.Space
	var resourceID, resourceIDDup *uuid.UUID
	var resourceFirst, resourceLast, resourceFull *string
	err := row.Scan(
		&res.ID, &res.TenantID, &res.SpaceID, &resourceID, &res.CustomerID,
		&res.StartTime, &res.EndTime, &res.Status, &res.Notes, &res.Unit, &res.Floor,
		&res.CancelledAt, &res.CancellationReason, &res.CancelledBy,
		&res.CreatedAt, &res.UpdatedAt,
		&cust.ID, &cust.TenantID, &cust.Email, &cust.FirstName, &cust.LastName, &cust.Phone,
		&space.ID, &space.TenantID, &space.Name, &space.DurationMinutes, &space.IsActive,
		&resourceIDDup, &resourceFirst, &resourceLast, &resourceFull,
	)
	if err != nil {
		return nil, err
	}
	res.ResourceID = resourceID
	res.Customer = &cust
	res.Space = &space
	if resourceID != nil && resourceIDDup != nil {
		res.Resource = &models.Resource{
			ID:        *resourceIDDup,
			TenantID:  res.TenantID,
			FirstName: deref(resourceFirst),
			LastName:  deref(resourceLast),
			FullName:  deref(resourceFull),
		}
	}
	return &res, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetByID returns a reservation with its customer, space, and resource.
func (r *Repository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*models.Reservation, error) {
	row := r.pool.QueryRow(ctx, reservationJoinQuery+` WHERE r.id = $1 AND r.tenant_id = $2`, id, tenantID)
	res, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation not found", ErrNotFound)
	}
	return res, err
}

// ListFilters narrows the admin reservation listing. Zero values mean
// "no filter"; Start/End apply only when both are set.
type ListFilters struct {
	ResourceID *uuid.UUID
	Status     models.ReservationStatus
	Start      *time.Time
	End        *time.Time
}

// List returns a tenant's reservations with joined views, ordered by start
// ascending to match the admin calendar.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, f ListFilters) ([]models.Reservation, error) {
	q := reservationJoinQuery + ` WHERE r.tenant_id = $1`
	args := []interface{}{tenantID}
	if f.ResourceID != nil {
		args = append(args, *f.ResourceID)
		q += fmt.Sprintf(" AND r.resource_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if f.Start != nil && f.End != nil {
		args = append(args, *f.Start, *f.End)
		q += fmt.Sprintf(" AND r.start_time >= $%d AND r.start_time <= $%d", len(args)-1, len(args))
	}
	q += " ORDER BY r.start_time ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

// utcDayBounds returns the UTC civil-day window used by the day views.
func utcDayBounds(year, month, day int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month), day, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return start, end
}

// ListDay returns the sanitized public view of a tenant's blocking
// reservations on a UTC civil day: occupied intervals only, no customer data.
func (r *Repository) ListDay(ctx context.Context, tenantID uuid.UUID, year, month, day int) ([]models.DayReservation, error) {
	startOfDay, endOfDay := utcDayBounds(year, month, day)
	rows, err := r.pool.Query(ctx,
		`SELECT id, space_id, resource_id, start_time, end_time
		FROM reservations
		WHERE tenant_id = $1 AND start_time >= $2 AND start_time <= $3
		  AND `+blockingStatuses+`
		ORDER BY start_time ASC`,
		tenantID, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.DayReservation
	for rows.Next() {
		var d models.DayReservation
		if err := rows.Scan(&d.ID, &d.SpaceID, &d.ResourceID, &d.StartTime, &d.EndTime); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListBlockingForDay returns the busy intervals the slot generator must mark
// unavailable: blocking reservations on this space+resource whose start falls
// in the UTC civil day. A nil resource matches only resource-less rows.
func (r *Repository) ListBlockingForDay(ctx context.Context, tenantID, spaceID uuid.UUID, resourceID *uuid.UUID, year, month, day int) ([]availability.Interval, error) {
	startOfDay, endOfDay := utcDayBounds(year, month, day)
	rows, err := r.pool.Query(ctx,
		`SELECT start_time, end_time
		FROM reservations
		WHERE tenant_id = $1 AND space_id = $2
		  AND resource_id IS NOT DISTINCT FROM $3
		  AND start_time >= $4 AND start_time <= $5
		  AND `+blockingStatuses+`
		ORDER BY start_time ASC`,
		tenantID, spaceID, resourceID, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var busy []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	return busy, rows.Err()
}

// Cancel marks a reservation CANCELLED with its audit trail. The reservation
// stops blocking slots and conflict checks immediately.
func (r *Repository) Cancel(ctx context.Context, id, tenantID uuid.UUID, reason, actor string) (*models.Reservation, error) {
	if actor == "" {
		actor = "admin"
	}
	const q = `UPDATE reservations
		SET status = 'CANCELLED', cancelled_at = NOW(), cancellation_reason = $3, cancelled_by = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING id`
	var updated uuid.UUID
	err := r.pool.QueryRow(ctx, q, id, tenantID, reason, actor).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, tenantID)
}

// Remove hard-deletes a reservation (admin only).
func (r *Repository) Remove(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation not found", ErrNotFound)
	}
	return nil
}

// ReminderTarget identifies a reservation due a reminder email.
type ReminderTarget struct {
	TenantID      uuid.UUID
	ReservationID uuid.UUID
}

// ListDueReminders returns blocking reservations starting within [from, to)
// that have not had a reminder queued yet.
func (r *Repository) ListDueReminders(ctx context.Context, from, to time.Time) ([]ReminderTarget, error) {
	const q = `
		SELECT r.tenant_id, r.id
		FROM reservations r
		WHERE r.start_time >= $1 AND r.start_time < $2
		  AND r.` + blockingStatuses + `
		  AND NOT EXISTS (
			SELECT 1 FROM email_logs el
			WHERE el.reservation_id = r.id AND el.email_type = 'reservation_reminder'
		  )
		ORDER BY r.start_time`
	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	targets := make([]ReminderTarget, 0)
	for rows.Next() {
		var t ReminderTarget
		if err := rows.Scan(&t.TenantID, &t.ReservationID); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}
