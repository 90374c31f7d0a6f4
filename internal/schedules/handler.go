package schedules

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/availability"
	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/internal/spaces"
	"github.com/reservar-app/backend/pkg/response"
)

// ScheduleRequest is the body for creating a schedule window. Scope is
// derived from which ID is present: space_id, resource_id, or neither
// (tenant-global).
type ScheduleRequest struct {
	SpaceID       *uuid.UUID `json:"space_id"`
	ResourceID    *uuid.UUID `json:"resource_id"`
	DayOfWeek     *int       `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime     string     `json:"start_time" binding:"required"`
	EndTime       string     `json:"end_time" binding:"required"`
	IsException   bool       `json:"is_exception"`
	ExceptionDate *time.Time `json:"exception_date"`
}

// Handler handles schedule HTTP endpoints.
type Handler struct {
	repo      *Repository
	spaceRepo *spaces.Repository
	logger    *zap.Logger
}

// NewHandler creates a schedules handler.
func NewHandler(repo *Repository, spaceRepo *spaces.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, spaceRepo: spaceRepo, logger: logger}
}

func adminTenant(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.TenantID(c)
	if !ok {
		response.Forbidden(c, "token is not tenant-scoped")
		return uuid.Nil, false
	}
	return id, true
}

// resolveScope validates ownership and builds the tagged scope from the
// request. Two IDs at once is rejected before touching the database.
func (h *Handler) resolveScope(c *gin.Context, tenantID uuid.UUID, req *ScheduleRequest) (models.ScheduleScope, bool) {
	if req.SpaceID != nil && req.ResourceID != nil {
		response.BadRequest(c, "schedule cannot be scoped to both a space and a resource")
		return models.ScheduleScope{}, false
	}
	switch {
	case req.SpaceID != nil:
		if _, err := h.spaceRepo.GetSpace(c.Request.Context(), *req.SpaceID, tenantID); err != nil {
			response.NotFound(c, "space not found")
			return models.ScheduleScope{}, false
		}
		scope, err := models.NewSpaceScope(*req.SpaceID)
		if err != nil {
			response.BadRequest(c, err.Error())
			return models.ScheduleScope{}, false
		}
		return scope, true
	case req.ResourceID != nil:
		ok, err := h.spaceRepo.ResourceExists(c.Request.Context(), *req.ResourceID, tenantID)
		if err != nil || !ok {
			response.NotFound(c, "resource not found")
			return models.ScheduleScope{}, false
		}
		scope, err := models.NewResourceScope(*req.ResourceID)
		if err != nil {
			response.BadRequest(c, err.Error())
			return models.ScheduleScope{}, false
		}
		return scope, true
	default:
		scope, err := models.NewGlobalScope(tenantID)
		if err != nil {
			response.BadRequest(c, err.Error())
			return models.ScheduleScope{}, false
		}
		return scope, true
	}
}

func validWindow(start, end string) bool {
	_, _, okStart := availability.ParseClock(start)
	_, _, okEnd := availability.ParseClock(end)
	return okStart && okEnd
}

// Create handles POST /admin/schedules.
func (h *Handler) Create(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validWindow(req.StartTime, req.EndTime) {
		response.BadRequest(c, "start_time and end_time must be HH:mm")
		return
	}
	scope, ok := h.resolveScope(c, tenantID, &req)
	if !ok {
		return
	}
	sch := &models.Schedule{
		Scope:         scope,
		DayOfWeek:     *req.DayOfWeek,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		IsException:   req.IsException,
		ExceptionDate: req.ExceptionDate,
	}
	if err := h.repo.Create(c.Request.Context(), sch); err != nil {
		h.logger.Error("create schedule failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to create schedule")
		return
	}
	response.Created(c, sch)
}

// List handles GET /admin/schedules.
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	list, err := h.repo.ListForTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("list schedules failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list schedules")
		return
	}
	if list == nil {
		list = []models.Schedule{}
	}
	response.OK(c, list)
}

// Update handles PUT /admin/schedules/:id. The scope is fixed; only the
// window and exception fields change.
func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validWindow(req.StartTime, req.EndTime) {
		response.BadRequest(c, "start_time and end_time must be HH:mm")
		return
	}
	sch, err := h.repo.Get(c.Request.Context(), id, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "schedule not found")
			return
		}
		response.Internal(c, "failed to load schedule")
		return
	}
	sch.DayOfWeek = *req.DayOfWeek
	sch.StartTime = req.StartTime
	sch.EndTime = req.EndTime
	sch.IsException = req.IsException
	sch.ExceptionDate = req.ExceptionDate
	if err := h.repo.Update(c.Request.Context(), sch, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "schedule not found")
			return
		}
		h.logger.Error("update schedule failed", zap.Error(err), zap.String("schedule_id", id.String()))
		response.Internal(c, "failed to update schedule")
		return
	}
	response.OK(c, sch)
}

// Delete handles DELETE /admin/schedules/:id.
func (h *Handler) Delete(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "schedule not found")
			return
		}
		h.logger.Error("delete schedule failed", zap.Error(err), zap.String("schedule_id", id.String()))
		response.Internal(c, "failed to delete schedule")
		return
	}
	response.NoContent(c)
}
