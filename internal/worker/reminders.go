package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/reservations"
	"github.com/reservar-app/backend/pkg/queue"
)

// ReminderScheduler periodically queues reminder emails for reservations
// starting within the lookahead window. Already-reminded reservations are
// skipped by the repository query, so overlapping scans are harmless.
type ReminderScheduler struct {
	queue     *queue.Queue
	resRepo   *reservations.Repository
	interval  time.Duration
	lookahead time.Duration
	logger    *zap.Logger
}

// NewReminderScheduler creates a scheduler scanning every interval for
// reservations starting within lookahead.
func NewReminderScheduler(q *queue.Queue, resRepo *reservations.Repository, interval, lookahead time.Duration, logger *zap.Logger) *ReminderScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		queue:     q,
		resRepo:   resRepo,
		interval:  interval,
		lookahead: lookahead,
		logger:    logger,
	}
}

// Run blocks scanning until ctx is cancelled.
func (s *ReminderScheduler) Run(ctx context.Context) {
	s.logger.Info("reminder scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("lookahead", s.lookahead))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopping")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *ReminderScheduler) scan(ctx context.Context) {
	now := time.Now().UTC()
	targets, err := s.resRepo.ListDueReminders(ctx, now, now.Add(s.lookahead))
	if err != nil {
		s.logger.Error("reminder scan failed", zap.Error(err))
		return
	}
	for _, t := range targets {
		err := s.queue.EnqueueEmail(ctx, queue.JobTypeReminder, queue.EmailPayload{
			TenantID:      t.TenantID,
			ReservationID: t.ReservationID,
		})
		if err != nil {
			s.logger.Error("enqueue reminder failed",
				zap.Error(err),
				zap.String("reservation_id", t.ReservationID.String()))
		}
	}
	if len(targets) > 0 {
		s.logger.Info("reminders queued", zap.Int("count", len(targets)))
	}
}
