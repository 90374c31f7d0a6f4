package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/internal/models"
)

// ErrNotFound is returned when a schedule does not exist for the tenant.
var ErrNotFound = errors.New("not found")

// Repository handles schedule persistence. Scope ownership is expressed via
// three nullable foreign keys; the CHECK constraint keeps exactly one set,
// and models.ScheduleScope keeps the Go side equally honest.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a schedules repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const scheduleColumns = `id, tenant_id, space_id, resource_id, day_of_week, start_time, end_time,
	is_exception, exception_date, created_at, updated_at`

func scanSchedule(row pgx.Row) (*models.Schedule, error) {
	var sch models.Schedule
	var tenantID, spaceID, resourceID *uuid.UUID
	err := row.Scan(&sch.ID, &tenantID, &spaceID, &resourceID, &sch.DayOfWeek,
		&sch.StartTime, &sch.EndTime, &sch.IsException, &sch.ExceptionDate,
		&sch.CreatedAt, &sch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sch.Scope, err = models.ScopeFromColumns(tenantID, spaceID, resourceID)
	if err != nil {
		return nil, err
	}
	return &sch, nil
}

// Create inserts a schedule window.
func (r *Repository) Create(ctx context.Context, sch *models.Schedule) error {
	tenantID, spaceID, resourceID := sch.Scope.Columns()
	const q = `INSERT INTO schedules
		(id, tenant_id, space_id, resource_id, day_of_week, start_time, end_time, is_exception, exception_date)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, tenantID, spaceID, resourceID,
		sch.DayOfWeek, sch.StartTime, sch.EndTime, sch.IsException, sch.ExceptionDate).
		Scan(&sch.ID, &sch.CreatedAt, &sch.UpdatedAt)
}

// ListForDay returns the non-exception windows for one scope and local
// day-of-week (0=Sunday), ordered by start time.
func (r *Repository) ListForDay(ctx context.Context, scope models.ScheduleScope, dayOfWeek int) ([]models.Schedule, error) {
	var col string
	switch scope.Kind {
	case models.ScopeSpace:
		col = "space_id"
	case models.ScopeResource:
		col = "resource_id"
	case models.ScopeGlobal:
		col = "tenant_id"
	default:
		return nil, models.ErrInvalidScope
	}
	q := `SELECT ` + scheduleColumns + ` FROM schedules
		WHERE ` + col + ` = $1 AND day_of_week = $2 AND is_exception = false
		ORDER BY start_time`
	rows, err := r.pool.Query(ctx, q, scope.ID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *sch)
	}
	return list, rows.Err()
}

// tenantOwnership matches schedules owned by the tenant directly or through
// one of its spaces or resources.
const tenantOwnership = `(tenant_id = $1
	OR space_id IN (SELECT id FROM spaces WHERE tenant_id = $1)
	OR resource_id IN (SELECT id FROM resources WHERE tenant_id = $1))`

// ListForTenant returns every schedule the tenant owns, any scope.
func (r *Repository) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules
		WHERE ` + tenantOwnership + `
		ORDER BY day_of_week, start_time`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *sch)
	}
	return list, rows.Err()
}

// Get returns one schedule if the tenant owns it.
func (r *Repository) Get(ctx context.Context, id, tenantID uuid.UUID) (*models.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $2 AND ` + tenantOwnership
	sch, err := scanSchedule(r.pool.QueryRow(ctx, q, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: schedule not found", ErrNotFound)
	}
	return sch, err
}

// Update rewrites a schedule's window and exception fields. Scope is fixed
// at creation.
func (r *Repository) Update(ctx context.Context, sch *models.Schedule, tenantID uuid.UUID) error {
	q := `UPDATE schedules
		SET day_of_week = $3, start_time = $4, end_time = $5, is_exception = $6, exception_date = $7, updated_at = NOW()
		WHERE id = $2 AND ` + tenantOwnership + `
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, tenantID, sch.ID,
		sch.DayOfWeek, sch.StartTime, sch.EndTime, sch.IsException, sch.ExceptionDate).
		Scan(&sch.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: schedule not found", ErrNotFound)
	}
	return err
}

// Delete removes a schedule if the tenant owns it.
func (r *Repository) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $2 AND `+tenantOwnership, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: schedule not found", ErrNotFound)
	}
	return nil
}
