package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/internal/notifications"
	"github.com/reservar-app/backend/internal/reservations"
	"github.com/reservar-app/backend/internal/tenants"
	"github.com/reservar-app/backend/pkg/queue"
)

// EmailProcessor consumes notification jobs and delivers emails over SMTP.
// Every attempt is recorded in email_logs; failed jobs go back to the
// queue until the retry budget is spent.
type EmailProcessor struct {
	queue       *queue.Queue
	resRepo     *reservations.Repository
	tenantRepo  *tenants.Repository
	logRepo     *notifications.Repository
	sender      notifications.Sender
	frontendURL string
	logger      *zap.Logger
}

// NewEmailProcessor creates the worker's job processor.
func NewEmailProcessor(q *queue.Queue, resRepo *reservations.Repository, tenantRepo *tenants.Repository, logRepo *notifications.Repository, sender notifications.Sender, frontendURL string, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		queue:       q,
		resRepo:     resRepo,
		tenantRepo:  tenantRepo,
		logRepo:     logRepo,
		sender:      sender,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Run blocks consuming jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("email worker stopping")
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := p.process(ctx, job); err != nil {
			p.logger.Warn("job failed",
				zap.String("job_id", job.ID),
				zap.String("type", string(job.Type)),
				zap.Int("attempt", job.Attempt),
				zap.Error(err))
			if rerr := p.queue.Retry(ctx, job); rerr != nil {
				p.logger.Error("retry failed", zap.Error(rerr), zap.String("job_id", job.ID))
			}
		}
	}
}

func (p *EmailProcessor) process(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Malformed payloads can never succeed, drop instead of retrying.
		p.logger.Error("dropping malformed job", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}

	res, err := p.resRepo.GetByID(ctx, payload.ReservationID, payload.TenantID)
	if err != nil {
		if errors.Is(err, reservations.ErrNotFound) {
			p.logger.Warn("reservation gone, dropping job",
				zap.String("reservation_id", payload.ReservationID.String()))
			return nil
		}
		return fmt.Errorf("load reservation: %w", err)
	}
	if res.Customer == nil || res.Customer.Email == "" {
		p.logger.Warn("reservation has no customer email, dropping job",
			zap.String("reservation_id", res.ID.String()))
		return nil
	}

	tenant, err := p.tenantRepo.GetByID(ctx, payload.TenantID)
	if err != nil {
		// Branding is cosmetic, send with defaults rather than fail.
		p.logger.Warn("tenant lookup failed", zap.Error(err))
		tenant = nil
	}

	email, ics := p.render(job.Type, res, tenant, payload.Reason)

	log, err := p.logRepo.Create(ctx, payload.TenantID, &res.ID, string(job.Type), res.Customer.Email, email.Subject)
	if err != nil {
		return fmt.Errorf("create email log: %w", err)
	}

	if err := p.sender.Send(res.Customer.Email, email.Subject, email.Body, ics); err != nil {
		if merr := p.logRepo.MarkFailed(ctx, log.ID, err.Error()); merr != nil {
			p.logger.Error("mark failed errored", zap.Error(merr))
		}
		return fmt.Errorf("send email: %w", err)
	}
	if err := p.logRepo.MarkSent(ctx, log.ID); err != nil {
		p.logger.Error("mark sent errored", zap.Error(err))
	}

	p.logger.Info("email sent",
		zap.String("type", string(job.Type)),
		zap.String("recipient", res.Customer.Email),
		zap.String("reservation_id", res.ID.String()))
	return nil
}

// render picks the template for the job type. Only confirmations carry
// a calendar attachment.
func (p *EmailProcessor) render(t queue.JobType, res *models.Reservation, tenant *models.Tenant, reason string) (notifications.Email, []byte) {
	switch t {
	case queue.JobTypeCancellation:
		return notifications.RenderCancellation(res, tenant, reason, p.frontendURL), nil
	case queue.JobTypeReminder:
		return notifications.RenderReminder(res, tenant, p.frontendURL), nil
	default:
		return notifications.RenderConfirmation(res, tenant, p.frontendURL), notifications.BuildICS(res, tenant)
	}
}
