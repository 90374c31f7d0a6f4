package notifications

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/pkg/queue"
	"github.com/reservar-app/backend/pkg/response"
)

// Handler serves the admin email log endpoints.
type Handler struct {
	repo   *Repository
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an email log handler.
func NewHandler(repo *Repository, svc *Service, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, svc: svc, logger: logger}
}

// List returns the tenant's email logs, newest first.
// Optional query params: reservation_id, limit.
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Forbidden(c, "token is not bound to a tenant")
		return
	}

	var reservationID *uuid.UUID
	if raw := c.Query("reservation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid reservation_id")
			return
		}
		reservationID = &id
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	logs, err := h.repo.ListByTenant(c.Request.Context(), tenantID, reservationID, limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to list email logs")
		return
	}
	response.OK(c, logs)
}

// Resend re-queues the email recorded in a log row.
func (h *Handler) Resend(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Forbidden(c, "token is not bound to a tenant")
		return
	}
	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid email log id")
		return
	}

	log, err := h.repo.GetByID(c.Request.Context(), tenantID, logID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			response.NotFound(c, "email log not found")
			return
		}
		h.logger.Error("get email log failed", zap.Error(err))
		response.Internal(c, "failed to load email log")
		return
	}
	if log.ReservationID == nil {
		response.BadRequest(c, "email log has no reservation to resend for")
		return
	}

	var sendErr error
	switch queue.JobType(log.EmailType) {
	case queue.JobTypeConfirmation:
		sendErr = h.svc.SendConfirmation(c.Request.Context(), tenantID, *log.ReservationID)
	case queue.JobTypeCancellation:
		sendErr = h.svc.SendCancellation(c.Request.Context(), tenantID, *log.ReservationID, "")
	case queue.JobTypeReminder:
		sendErr = h.svc.SendReminder(c.Request.Context(), tenantID, *log.ReservationID)
	default:
		response.BadRequest(c, "unknown email type")
		return
	}
	if sendErr != nil {
		h.logger.Error("resend enqueue failed", zap.Error(sendErr), zap.String("log_id", logID.String()))
		response.Internal(c, "failed to queue email")
		return
	}
	response.OK(c, gin.H{"queued": true})
}
