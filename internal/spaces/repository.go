package spaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/internal/models"
)

// ErrNotFound is returned when a space or resource does not exist for the
// tenant.
var ErrNotFound = errors.New("not found")

// Repository handles space and resource persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a spaces repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const spaceColumns = `id, tenant_id, name, COALESCE(description, ''), duration_minutes, is_active, created_at, updated_at`

func scanSpace(row pgx.Row) (*models.Space, error) {
	var s models.Space
	err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.DurationMinutes,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: space not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSpace inserts a space.
func (r *Repository) CreateSpace(ctx context.Context, s *models.Space) error {
	const q = `INSERT INTO spaces (id, tenant_id, name, description, duration_minutes, is_active)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.TenantID, s.Name, s.Description, s.DurationMinutes, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetSpace returns a space by ID for the tenant, active or not.
func (r *Repository) GetSpace(ctx context.Context, id, tenantID uuid.UUID) (*models.Space, error) {
	return scanSpace(r.pool.QueryRow(ctx,
		`SELECT `+spaceColumns+` FROM spaces WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

// GetActiveSpace returns the space only when it belongs to an active tenant
// and is itself active. Deactivated tenants and inactive spaces are invisible
// to availability and booking.
func (r *Repository) GetActiveSpace(ctx context.Context, id, tenantID uuid.UUID) (*models.Space, error) {
	return scanSpace(r.pool.QueryRow(ctx,
		`SELECT `+spaceColumns+` FROM spaces
		WHERE id = $1 AND tenant_id = $2 AND is_active = true
		  AND EXISTS (SELECT 1 FROM tenants t WHERE t.id = $2 AND t.is_active = true)`, id, tenantID))
}

// ListSpaces returns a tenant's spaces. When activeOnly is set, inactive
// spaces are filtered out (the public booking page view).
func (r *Repository) ListSpaces(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.Space, error) {
	q := `SELECT ` + spaceColumns + ` FROM spaces WHERE tenant_id = $1`
	if activeOnly {
		q += ` AND is_active = true`
	}
	q += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Space
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// UpdateSpace updates a space's mutable fields.
func (r *Repository) UpdateSpace(ctx context.Context, s *models.Space) error {
	const q = `UPDATE spaces
		SET name = $3, description = NULLIF($4, ''), duration_minutes = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, s.ID, s.TenantID, s.Name, s.Description, s.DurationMinutes, s.IsActive).
		Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: space not found", ErrNotFound)
	}
	return err
}

// DeleteSpace removes a space and, via cascade, its schedules and
// reservations.
func (r *Repository) DeleteSpace(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: space not found", ErrNotFound)
	}
	return nil
}

const resourceColumns = `id, tenant_id, first_name, COALESCE(last_name, ''), full_name, is_active, created_at, updated_at`

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(&res.ID, &res.TenantID, &res.FirstName, &res.LastName, &res.FullName,
		&res.IsActive, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: resource not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateResource inserts a resource. FullName is derived when empty.
func (r *Repository) CreateResource(ctx context.Context, res *models.Resource) error {
	if res.FullName == "" {
		res.FullName = res.FirstName
		if res.LastName != "" {
			res.FullName += " " + res.LastName
		}
	}
	const q = `INSERT INTO resources (id, tenant_id, first_name, last_name, full_name, is_active)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, res.TenantID, res.FirstName, res.LastName, res.FullName, res.IsActive).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// GetResource returns a resource by ID for the tenant.
func (r *Repository) GetResource(ctx context.Context, id, tenantID uuid.UUID) (*models.Resource, error) {
	return scanResource(r.pool.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = $1 AND tenant_id = $2`, id, tenantID))
}

// ResourceExists reports whether the resource belongs to the tenant.
func (r *Repository) ResourceExists(ctx context.Context, id, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM resources WHERE id = $1 AND tenant_id = $2)`, id, tenantID).
		Scan(&exists)
	return exists, err
}

// ListResources returns a tenant's resources.
func (r *Repository) ListResources(ctx context.Context, tenantID uuid.UUID) ([]models.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE tenant_id = $1 ORDER BY full_name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

// DeleteResource removes a resource.
func (r *Repository) DeleteResource(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: resource not found", ErrNotFound)
	}
	return nil
}
