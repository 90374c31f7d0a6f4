package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservar-app/backend/internal/models"
)

// ErrLogNotFound is returned when an email log row does not exist.
var ErrLogNotFound = errors.New("email log not found")

// Repository persists email delivery logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const emailLogColumns = `id, tenant_id, reservation_id, email_type, recipient_email,
	COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at`

func scanEmailLog(row pgx.Row) (*models.EmailLog, error) {
	var l models.EmailLog
	err := row.Scan(&l.ID, &l.TenantID, &l.ReservationID, &l.EmailType, &l.RecipientEmail,
		&l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Create inserts a queued log row for an email about to be sent.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, reservationID *uuid.UUID, emailType, recipient, subject string) (*models.EmailLog, error) {
	const q = `
		INSERT INTO email_logs (tenant_id, reservation_id, email_type, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4, $5, 'queued')
		RETURNING ` + emailLogColumns
	log, err := scanEmailLog(r.pool.QueryRow(ctx, q, tenantID, reservationID, emailType, recipient, subject))
	if err != nil {
		return nil, fmt.Errorf("insert email log: %w", err)
	}
	return log, nil
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE email_logs SET status = 'sent', sent_at = NOW(), error_message = NULL WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// MarkFailed records a delivery failure with the error text.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	const q = `UPDATE email_logs SET status = 'failed', error_message = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, errMsg)
	return err
}

// GetByID returns one log row scoped to a tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.EmailLog, error) {
	const q = `SELECT ` + emailLogColumns + ` FROM email_logs WHERE id = $1 AND tenant_id = $2`
	return scanEmailLog(r.pool.QueryRow(ctx, q, id, tenantID))
}

// ListByTenant returns a tenant's email logs, newest first. A zero
// reservationID means no reservation filter.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, reservationID *uuid.UUID, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if reservationID != nil {
		args = append(args, *reservationID)
		q += fmt.Sprintf(" AND reservation_id = $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.EmailLog, 0)
	for rows.Next() {
		l, err := scanEmailLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
