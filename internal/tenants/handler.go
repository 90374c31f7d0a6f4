package tenants

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/pkg/response"
	"github.com/reservar-app/backend/pkg/utils"
)

// CreateTenantRequest is the body for public tenant creation. The contact
// email doubles as the admin login.
type CreateTenantRequest struct {
	Slug         string `json:"slug" binding:"required,min=2"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	InviteToken  string `json:"invite_token"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LogoURL      string `json:"logo_url"`
	PrimaryColor string `json:"primary_color"`
	Timezone     string `json:"timezone"`
	Locale       string `json:"locale"`
}

// UpdateTenantRequest is the body for updating a tenant's own profile.
type UpdateTenantRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	LogoURL      string `json:"logo_url"`
	PrimaryColor string `json:"primary_color"`
	Timezone     string `json:"timezone"`
	Locale       string `json:"locale"`
}

// Handler handles tenant HTTP endpoints.
type Handler struct {
	repo         *Repository
	requireToken bool
	logger       *zap.Logger
}

// NewHandler creates a tenants handler. When requireToken is set, public
// tenant creation demands a valid onboarding token.
func NewHandler(repo *Repository, requireToken bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, requireToken: requireToken, logger: logger}
}

// Create handles POST /tenants. Creates the tenant and its admin login in
// one transaction, consuming the onboarding token when supplied.
func (h *Handler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if h.requireToken && req.InviteToken == "" {
		response.BadRequest(c, "an invitation link is required to sign up")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	t := &models.Tenant{
		Slug:         req.Slug,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
		PrimaryColor: req.PrimaryColor,
		Timezone:     req.Timezone,
		Locale:       req.Locale,
	}
	if t.PrimaryColor == "" {
		t.PrimaryColor = "#3b82f6"
	}
	if t.Timezone == "" {
		t.Timezone = "America/Argentina/Buenos_Aires"
	}
	if t.Locale == "" {
		t.Locale = "es-AR"
	}

	if err := h.repo.CreateWithAdmin(c.Request.Context(), t, hash, req.InviteToken); err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			response.BadRequest(c, "the invitation link is invalid or was already used")
		case errors.Is(err, ErrSlugTaken):
			response.Conflict(c, "this slug is already taken")
		default:
			h.logger.Error("create tenant failed", zap.Error(err), zap.String("slug", req.Slug))
			response.Internal(c, "failed to create tenant")
		}
		return
	}
	response.Created(c, t.ToPublic())
}

// List handles GET /tenants. Public directory with branding fields.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list tenants failed", zap.Error(err))
		response.Internal(c, "failed to list tenants")
		return
	}
	out := make([]models.TenantPublic, 0, len(list))
	for i := range list {
		if list[i].IsActive {
			out = append(out, list[i].ToPublic())
		}
	}
	response.OK(c, out)
}

// GetBySlug handles GET /tenants/slug/:slug. Inactive tenants 404.
func (h *Handler) GetBySlug(c *gin.Context) {
	t, err := h.repo.GetActiveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		h.logger.Error("get tenant failed", zap.Error(err), zap.String("slug", c.Param("slug")))
		response.Internal(c, "failed to load tenant")
		return
	}
	response.OK(c, t.ToPublic())
}

// GetScheduleRange handles GET /tenants/slug/:slug/schedule-range. Returns
// the hour band the booking grid should render; unknown slugs fall back to
// the full day rather than erroring, keeping the grid usable.
func (h *Handler) GetScheduleRange(c *gin.Context) {
	t, err := h.repo.GetActiveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.OK(c, ScheduleRange{StartHour: 0, EndHour: 24})
		return
	}
	windows, err := h.repo.ListScheduleWindows(c.Request.Context(), t.ID)
	if err != nil {
		h.logger.Error("load schedule windows failed", zap.Error(err), zap.String("tenant_id", t.ID.String()))
		response.OK(c, ScheduleRange{StartHour: 0, EndHour: 24})
		return
	}
	response.OK(c, RangeHours(windows))
}

// Update handles PUT /admin/tenant. A tenant admin updates its own profile.
func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Forbidden(c, "token is not tenant-scoped")
		return
	}
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		response.NotFound(c, "tenant not found")
		return
	}
	t.Name = req.Name
	t.Email = req.Email
	t.Phone = req.Phone
	t.Address = req.Address
	t.LogoURL = req.LogoURL
	if req.PrimaryColor != "" {
		t.PrimaryColor = req.PrimaryColor
	}
	if req.Timezone != "" {
		t.Timezone = req.Timezone
	}
	if req.Locale != "" {
		t.Locale = req.Locale
	}
	if err := h.repo.Update(c.Request.Context(), t); err != nil {
		h.logger.Error("update tenant failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		response.Internal(c, "failed to update tenant")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /superadmin/tenants/:id. Cascades to everything the
// tenant owns.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		h.logger.Error("delete tenant failed", zap.Error(err), zap.String("tenant_id", id.String()))
		response.Internal(c, "failed to delete tenant")
		return
	}
	response.NoContent(c)
}
