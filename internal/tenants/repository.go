package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/internal/models"
)

var (
	// ErrNotFound is returned for unknown or (publicly) inactive tenants.
	ErrNotFound = errors.New("not found")
	// ErrInvalidToken is returned when the onboarding token is unknown or
	// already used.
	ErrInvalidToken = errors.New("invalid onboarding token")
	// ErrSlugTaken is returned when the requested slug already exists.
	ErrSlugTaken = errors.New("slug already taken")
)

// Repository handles tenant persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tenantColumns = `id, slug, name, email, COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(logo_url, ''), primary_color, timezone, locale, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Email, &t.Phone, &t.Address,
		&t.LogoURL, &t.PrimaryColor, &t.Timezone, &t.Locale, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateWithAdmin inserts the tenant and its admin user in one transaction.
// When inviteToken is non-empty it must reference an unused onboarding
// token, which is consumed atomically with the creation.
func (r *Repository) CreateWithAdmin(ctx context.Context, t *models.Tenant, adminPasswordHash, inviteToken string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	if inviteToken != "" {
		// Claim the token first; 0 rows means unknown or already used.
		tag, err := tx.Exec(ctx,
			`UPDATE onboarding_tokens SET used_at = NOW() WHERE token = $1 AND used_at IS NULL`,
			inviteToken)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidToken
		}
	}

	var taken bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1)`, t.Slug).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrSlugTaken, t.Slug)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO tenants (id, slug, name, email, phone, address, logo_url, primary_color, timezone, locale, is_active)
		VALUES (gen_random_uuid(), $1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, true)
		RETURNING id, is_active, created_at, updated_at`,
		t.Slug, t.Name, t.Email, t.Phone, t.Address, t.LogoURL, t.PrimaryColor, t.Timezone, t.Locale).
		Scan(&t.ID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, tenant_id, email, name, role, password_hash)
		VALUES (gen_random_uuid(), $1, $2, $3, 'admin', $4)`,
		t.ID, t.Email, t.Name, adminPasswordHash); err != nil {
		return err
	}

	if inviteToken != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE onboarding_tokens SET used_by_tenant_id = $1 WHERE token = $2`,
			t.ID, inviteToken); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// List returns all tenants with their branding fields. Used by the public
// directory; inactive tenants stay listed for the super admin.
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// GetByID returns a tenant by ID, active or not.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant not found", ErrNotFound)
	}
	return t, err
}

// GetActiveBySlug returns an active tenant by slug. Inactive tenants are
// publicly indistinguishable from missing ones.
func (r *Repository) GetActiveBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1 AND is_active = true`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant not found", ErrNotFound)
	}
	return t, err
}

// GetTimezone returns the tenant's IANA zone name, empty when the tenant is
// unknown (callers apply the documented default).
func (r *Repository) GetTimezone(ctx context.Context, id uuid.UUID) (string, error) {
	var tz string
	err := r.pool.QueryRow(ctx, `SELECT timezone FROM tenants WHERE id = $1`, id).Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return tz, err
}

// ListScheduleWindows returns every non-exception window the tenant owns,
// any scope, for the schedule-range computation.
func (r *Repository) ListScheduleWindows(ctx context.Context, tenantID uuid.UUID) ([][2]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT start_time, end_time FROM schedules
		WHERE is_exception = false
		  AND (tenant_id = $1
			OR space_id IN (SELECT id FROM spaces WHERE tenant_id = $1)
			OR resource_id IN (SELECT id FROM resources WHERE tenant_id = $1))`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var windows [][2]string
	for rows.Next() {
		var w [2]string
		if err := rows.Scan(&w[0], &w[1]); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// Update rewrites a tenant's branding and contact fields.
func (r *Repository) Update(ctx context.Context, t *models.Tenant) error {
	const q = `UPDATE tenants
		SET name = $2, email = $3, phone = NULLIF($4, ''), address = NULLIF($5, ''),
			logo_url = NULLIF($6, ''), primary_color = $7, timezone = $8, locale = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, t.ID, t.Name, t.Email, t.Phone, t.Address,
		t.LogoURL, t.PrimaryColor, t.Timezone, t.Locale).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: tenant not found", ErrNotFound)
	}
	return err
}

// SetActive flips the soft-deactivation flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tenant not found", ErrNotFound)
	}
	return nil
}

// Delete removes a tenant and cascades to everything it owns.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tenant not found", ErrNotFound)
	}
	return nil
}
