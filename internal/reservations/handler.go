package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/pkg/response"
)

// Notifier enqueues reservation emails. Failures are logged and never fail
// the booking or cancellation result.
type Notifier interface {
	SendConfirmation(ctx context.Context, tenantID, reservationID uuid.UUID) error
	SendCancellation(ctx context.Context, tenantID, reservationID uuid.UUID, reason string) error
}

// Broadcaster pushes reservation events to the tenant's realtime board.
type Broadcaster interface {
	BroadcastToTenantAndPublish(tenantID uuid.UUID, event string, payload interface{})
}

// CustomerInput identifies the booking customer. The customer record is
// created on first reservation.
type CustomerInput struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

// CreateReservationRequest is the body for POST /tenants/:tenantId/reservations.
type CreateReservationRequest struct {
	SpaceID    uuid.UUID     `json:"space_id" binding:"required"`
	ResourceID *uuid.UUID    `json:"resource_id"`
	Customer   CustomerInput `json:"customer" binding:"required"`
	StartTime  time.Time     `json:"start_time" binding:"required"`
	EndTime    *time.Time    `json:"end_time"`
	Status     string        `json:"status"`
	Notes      string        `json:"notes"`
	Unit       string        `json:"unit"`
	Floor      string        `json:"floor"`
}

// CancelReservationRequest is the body for POST /admin/reservations/:id/cancel.
type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

// Handler handles reservation and availability HTTP endpoints.
type Handler struct {
	repo     *Repository
	svc      *AvailabilityService
	notifier Notifier
	hub      Broadcaster
	logger   *zap.Logger
}

// NewHandler creates a reservations handler. Notifier and hub may be nil
// (tests, degraded boot).
func NewHandler(repo *Repository, svc *AvailabilityService, notifier Notifier, hub Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, svc: svc, notifier: notifier, hub: hub, logger: logger}
}

// tenantFromContext reads the tenant set by the JWT middleware. Super-admin
// tokens carry no tenant and cannot use tenant-scoped admin endpoints.
func tenantFromContext(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(middleware.ContextTenantID)
	if !ok {
		response.Unauthorized(c, "missing tenant context")
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	if !ok || id == uuid.Nil {
		response.Forbidden(c, "token is not tenant-scoped")
		return uuid.Nil, false
	}
	return id, true
}

func tenantParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return uuid.Nil, false
	}
	return id, true
}

// GetAvailability handles GET /tenants/:tenantId/availability.
// Query: space_id (required), resource_id (optional), date=YYYY-MM-DD.
func (h *Handler) GetAvailability(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}
	spaceID, err := uuid.Parse(c.Query("space_id"))
	if err != nil {
		response.BadRequest(c, "invalid space_id")
		return
	}
	var resourceID *uuid.UUID
	if raw := c.Query("resource_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid resource_id")
			return
		}
		resourceID = &id
	}
	date := c.Query("date")
	if _, _, _, err := ParseDate(date); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	slots, err := h.svc.GetAvailability(c.Request.Context(), tenantID, spaceID, resourceID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("availability failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to compute availability")
		return
	}
	response.OK(c, gin.H{"date": date, "slots": slots})
}

// GetDayReservations handles GET /tenants/:tenantId/reservations/day?date=.
// Public view for the day grid: occupied intervals only, no customer data.
func (h *Handler) GetDayReservations(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}
	year, month, day, err := ParseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.repo.ListDay(c.Request.Context(), tenantID, year, month, day)
	if err != nil {
		h.logger.Error("list day reservations failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list reservations")
		return
	}
	if list == nil {
		list = []models.DayReservation{}
	}
	response.OK(c, list)
}

// Create handles POST /tenants/:tenantId/reservations. Runs the serialized
// booking transaction, then fires the confirmation email and board event
// best-effort.
func (h *Handler) Create(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status := models.ReservationStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		response.BadRequest(c, "invalid status")
		return
	}

	res, err := h.repo.CreateReservation(c.Request.Context(), CreateInput{
		TenantID:          tenantID,
		SpaceID:           req.SpaceID,
		ResourceID:        req.ResourceID,
		CustomerFirstName: req.Customer.FirstName,
		CustomerLastName:  req.Customer.LastName,
		CustomerEmail:     req.Customer.Email,
		CustomerPhone:     req.Customer.Phone,
		Start:             req.StartTime,
		End:               req.EndTime,
		Status:            status,
		Notes:             req.Notes,
		Unit:              req.Unit,
		Floor:             req.Floor,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrConflict):
			response.Conflict(c, err.Error())
		case errors.Is(err, ErrTimeout):
			response.Timeout(c, "booking is busy, please retry")
		default:
			h.logger.Error("create reservation failed", zap.Error(err),
				zap.String("tenant_id", tenantID.String()),
				zap.String("space_id", req.SpaceID.String()))
			response.Internal(c, "failed to create reservation")
		}
		return
	}

	if h.notifier != nil {
		if err := h.notifier.SendConfirmation(c.Request.Context(), tenantID, res.ID); err != nil {
			h.logger.Warn("confirmation notification failed",
				zap.Error(err), zap.String("reservation_id", res.ID.String()))
		}
	}
	if h.hub != nil {
		h.hub.BroadcastToTenantAndPublish(tenantID, "reservation.created", res)
	}
	response.Created(c, res)
}

// List handles GET /admin/reservations. Tenant comes from the JWT.
// Query: resource_id, status, start_date, end_date (RFC3339, both or neither).
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var f ListFilters
	if raw := c.Query("resource_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid resource_id")
			return
		}
		f.ResourceID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ReservationStatus(raw)
		if !status.Valid() {
			response.BadRequest(c, "invalid status")
			return
		}
		f.Status = status
	}
	if from, to := c.Query("start_date"), c.Query("end_date"); from != "" && to != "" {
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			response.BadRequest(c, "invalid start_date")
			return
		}
		end, err := time.Parse(time.RFC3339, to)
		if err != nil {
			response.BadRequest(c, "invalid end_date")
			return
		}
		f.Start, f.End = &start, &end
	}

	list, err := h.repo.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.logger.Error("list reservations failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list reservations")
		return
	}
	if list == nil {
		list = []models.Reservation{}
	}
	response.OK(c, list)
}

// GetByID handles GET /admin/reservations/:id.
func (h *Handler) GetByID(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation id")
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("get reservation failed", zap.Error(err), zap.String("reservation_id", id.String()))
		response.Internal(c, "failed to load reservation")
		return
	}
	response.OK(c, res)
}

// Cancel handles POST /admin/reservations/:id/cancel. Sets the cancellation
// audit trail and fires the cancellation email best-effort.
func (h *Handler) Cancel(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation id")
		return
	}
	// Body is optional.
	var req CancelReservationRequest
	_ = c.ShouldBindJSON(&req)
	actor := c.GetString(middleware.ContextUserEmail)
	res, err := h.repo.Cancel(c.Request.Context(), id, tenantID, req.Reason, actor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("cancel reservation failed", zap.Error(err), zap.String("reservation_id", id.String()))
		response.Internal(c, "failed to cancel reservation")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.SendCancellation(c.Request.Context(), tenantID, res.ID, req.Reason); err != nil {
			h.logger.Warn("cancellation notification failed",
				zap.Error(err), zap.String("reservation_id", res.ID.String()))
		}
	}
	if h.hub != nil {
		h.hub.BroadcastToTenantAndPublish(tenantID, "reservation.cancelled", res)
	}
	response.OK(c, res)
}

// Remove handles DELETE /admin/reservations/:id. Hard delete.
func (h *Handler) Remove(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation id")
		return
	}
	if err := h.repo.Remove(c.Request.Context(), id, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("remove reservation failed", zap.Error(err), zap.String("reservation_id", id.String()))
		response.Internal(c, "failed to remove reservation")
		return
	}
	response.NoContent(c)
}
