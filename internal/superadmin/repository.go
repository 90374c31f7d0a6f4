package superadmin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles cross-tenant reads for the platform super admin.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a superadmin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TenantUsage is a tenant row with its usage counters.
type TenantUsage struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	Users        int       `json:"users"`
	Spaces       int       `json:"spaces"`
	Reservations int       `json:"reservations"`
	Customers    int       `json:"customers"`
}

// SystemStats are the platform-wide counters on the super-admin dashboard.
type SystemStats struct {
	Tenants         int `json:"tenants"`
	ActiveTenants   int `json:"active_tenants"`
	InactiveTenants int `json:"inactive_tenants"`
	Users           int `json:"users"`
	Reservations    int `json:"reservations"`
	Customers       int `json:"customers"`
	Spaces          int `json:"spaces"`
}

// ListTenants returns every tenant with usage counts, newest first.
func (r *Repository) ListTenants(ctx context.Context) ([]TenantUsage, error) {
	const q = `SELECT t.id, t.slug, t.name, t.email, t.is_active, t.created_at,
			(SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id),
			(SELECT COUNT(*) FROM spaces s WHERE s.tenant_id = t.id),
			(SELECT COUNT(*) FROM reservations res WHERE res.tenant_id = t.id),
			(SELECT COUNT(*) FROM customers c WHERE c.tenant_id = t.id)
		FROM tenants t
		ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []TenantUsage
	for rows.Next() {
		var t TenantUsage
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.Email, &t.IsActive, &t.CreatedAt,
			&t.Users, &t.Spaces, &t.Reservations, &t.Customers); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetTenant returns one tenant with usage counts.
func (r *Repository) GetTenant(ctx context.Context, id uuid.UUID) (*TenantUsage, error) {
	const q = `SELECT t.id, t.slug, t.name, t.email, t.is_active, t.created_at,
			(SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id),
			(SELECT COUNT(*) FROM spaces s WHERE s.tenant_id = t.id),
			(SELECT COUNT(*) FROM reservations res WHERE res.tenant_id = t.id),
			(SELECT COUNT(*) FROM customers c WHERE c.tenant_id = t.id)
		FROM tenants t WHERE t.id = $1`
	var t TenantUsage
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Slug, &t.Name, &t.Email, &t.IsActive, &t.CreatedAt,
		&t.Users, &t.Spaces, &t.Reservations, &t.Customers)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Stats returns the platform-wide counters.
func (r *Repository) Stats(ctx context.Context) (*SystemStats, error) {
	const q = `SELECT
			(SELECT COUNT(*) FROM tenants),
			(SELECT COUNT(*) FROM tenants WHERE is_active = true),
			(SELECT COUNT(*) FROM tenants WHERE is_active = false),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM reservations),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM spaces)`
	var s SystemStats
	err := r.pool.QueryRow(ctx, q).Scan(&s.Tenants, &s.ActiveTenants, &s.InactiveTenants,
		&s.Users, &s.Reservations, &s.Customers, &s.Spaces)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
