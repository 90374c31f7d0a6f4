package onboarding

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/internal/models"
)

// Repository handles one-time onboarding token persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an onboarding repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func generateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create mints and stores a new unused token.
func (r *Repository) Create(ctx context.Context) (*models.OnboardingToken, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	t := &models.OnboardingToken{Token: token}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO onboarding_tokens (id, token) VALUES (gen_random_uuid(), $1)
		RETURNING id, created_at`, token).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Validate reports whether the token exists and is unused.
func (r *Repository) Validate(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	var usedAt *string
	err := r.pool.QueryRow(ctx,
		`SELECT used_at::text FROM onboarding_tokens WHERE token = $1`, token).Scan(&usedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return usedAt == nil, nil
}

// List returns all tokens, newest first, for the super admin.
func (r *Repository) List(ctx context.Context) ([]models.OnboardingToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, token, used_at, used_by_tenant_id, created_at
		FROM onboarding_tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.OnboardingToken
	for rows.Next() {
		var t models.OnboardingToken
		if err := rows.Scan(&t.ID, &t.Token, &t.UsedAt, &t.UsedByTenantID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
