package spaces

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/pkg/response"
)

// SpaceRequest is the body for creating or updating a space.
type SpaceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
	IsActive        *bool  `json:"is_active"`
}

// ResourceRequest is the body for creating a resource.
type ResourceRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	IsActive  *bool  `json:"is_active"`
}

// Handler handles space and resource HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a spaces handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

func adminTenant(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.TenantID(c)
	if !ok {
		response.Forbidden(c, "token is not tenant-scoped")
		return uuid.Nil, false
	}
	return id, true
}

// ListPublic handles GET /tenants/:tenantId/spaces. Active spaces only.
func (h *Handler) ListPublic(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	list, err := h.repo.ListSpaces(c.Request.Context(), tenantID, true)
	if err != nil {
		h.logger.Error("list spaces failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list spaces")
		return
	}
	if list == nil {
		list = []models.Space{}
	}
	response.OK(c, list)
}

// ListResourcesPublic handles GET /tenants/:tenantId/resources.
func (h *Handler) ListResourcesPublic(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	list, err := h.repo.ListResources(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("list resources failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list resources")
		return
	}
	if list == nil {
		list = []models.Resource{}
	}
	response.OK(c, list)
}

// Create handles POST /admin/spaces.
func (h *Handler) Create(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	var req SpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	space := &models.Space{
		TenantID:        tenantID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        active,
	}
	if err := h.repo.CreateSpace(c.Request.Context(), space); err != nil {
		h.logger.Error("create space failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to create space")
		return
	}
	response.Created(c, space)
}

// List handles GET /admin/spaces. Includes inactive spaces.
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	list, err := h.repo.ListSpaces(c.Request.Context(), tenantID, false)
	if err != nil {
		h.logger.Error("list spaces failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list spaces")
		return
	}
	if list == nil {
		list = []models.Space{}
	}
	response.OK(c, list)
}

// Update handles PUT /admin/spaces/:id.
func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space id")
		return
	}
	var req SpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	space, err := h.repo.GetSpace(c.Request.Context(), id, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "space not found")
			return
		}
		response.Internal(c, "failed to load space")
		return
	}
	space.Name = req.Name
	space.Description = req.Description
	space.DurationMinutes = req.DurationMinutes
	if req.IsActive != nil {
		space.IsActive = *req.IsActive
	}
	if err := h.repo.UpdateSpace(c.Request.Context(), space); err != nil {
		h.logger.Error("update space failed", zap.Error(err), zap.String("space_id", id.String()))
		response.Internal(c, "failed to update space")
		return
	}
	response.OK(c, space)
}

// Delete handles DELETE /admin/spaces/:id.
func (h *Handler) Delete(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space id")
		return
	}
	if err := h.repo.DeleteSpace(c.Request.Context(), id, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "space not found")
			return
		}
		h.logger.Error("delete space failed", zap.Error(err), zap.String("space_id", id.String()))
		response.Internal(c, "failed to delete space")
		return
	}
	response.NoContent(c)
}

// CreateResource handles POST /admin/resources.
func (h *Handler) CreateResource(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	res := &models.Resource{
		TenantID:  tenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FullName:  req.FullName,
		IsActive:  active,
	}
	if err := h.repo.CreateResource(c.Request.Context(), res); err != nil {
		h.logger.Error("create resource failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to create resource")
		return
	}
	response.Created(c, res)
}

// ListResources handles GET /admin/resources.
func (h *Handler) ListResources(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	list, err := h.repo.ListResources(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("list resources failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to list resources")
		return
	}
	if list == nil {
		list = []models.Resource{}
	}
	response.OK(c, list)
}

// DeleteResource handles DELETE /admin/resources/:id.
func (h *Handler) DeleteResource(c *gin.Context) {
	tenantID, ok := adminTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	if err := h.repo.DeleteResource(c.Request.Context(), id, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "resource not found")
			return
		}
		h.logger.Error("delete resource failed", zap.Error(err), zap.String("resource_id", id.String()))
		response.Internal(c, "failed to delete resource")
		return
	}
	response.NoContent(c)
}
