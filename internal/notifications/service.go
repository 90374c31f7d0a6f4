package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/pkg/queue"
)

// Service queues notification emails for asynchronous delivery.
// It satisfies the reservations handler's Notifier interface.
type Service struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewService creates a notification service.
func NewService(q *queue.Queue, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{queue: q, logger: logger}
}

// SendConfirmation queues a booking confirmation email.
func (s *Service) SendConfirmation(ctx context.Context, tenantID, reservationID uuid.UUID) error {
	return s.queue.EnqueueEmail(ctx, queue.JobTypeConfirmation, queue.EmailPayload{
		TenantID:      tenantID,
		ReservationID: reservationID,
	})
}

// SendCancellation queues a cancellation notice.
func (s *Service) SendCancellation(ctx context.Context, tenantID, reservationID uuid.UUID, reason string) error {
	return s.queue.EnqueueEmail(ctx, queue.JobTypeCancellation, queue.EmailPayload{
		TenantID:      tenantID,
		ReservationID: reservationID,
		Reason:        reason,
	})
}

// SendReminder queues a day-before reminder email.
func (s *Service) SendReminder(ctx context.Context, tenantID, reservationID uuid.UUID) error {
	return s.queue.EnqueueEmail(ctx, queue.JobTypeReminder, queue.EmailPayload{
		TenantID:      tenantID,
		ReservationID: reservationID,
	})
}
