package superadmin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/tenants"
	"github.com/reservar-app/backend/pkg/response"
)

// Handler handles super-admin HTTP endpoints. The whole group is guarded by
// the super_admin role middleware.
type Handler struct {
	repo       *Repository
	tenantRepo *tenants.Repository
	logger     *zap.Logger
}

// NewHandler creates a superadmin handler.
func NewHandler(repo *Repository, tenantRepo *tenants.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tenantRepo: tenantRepo, logger: logger}
}

// Stats handles GET /superadmin/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("load system stats failed", zap.Error(err))
		response.Internal(c, "failed to load stats")
		return
	}
	response.OK(c, stats)
}

// ListTenants handles GET /superadmin/tenants.
func (h *Handler) ListTenants(c *gin.Context) {
	list, err := h.repo.ListTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("list tenants failed", zap.Error(err))
		response.Internal(c, "failed to list tenants")
		return
	}
	if list == nil {
		list = []TenantUsage{}
	}
	response.OK(c, list)
}

// GetTenant handles GET /superadmin/tenants/:id.
func (h *Handler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	t, err := h.repo.GetTenant(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "tenant not found")
		return
	}
	response.OK(c, t)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tenant id")
		return
	}
	if err := h.tenantRepo.SetActive(c.Request.Context(), id, active); err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		h.logger.Error("set tenant active failed", zap.Error(err), zap.String("tenant_id", id.String()))
		response.Internal(c, "failed to update tenant")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": active})
}

// Deactivate handles POST /superadmin/tenants/:id/deactivate. Soft: the
// tenant disappears from public endpoints but keeps its data.
func (h *Handler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Activate handles POST /superadmin/tenants/:id/activate.
func (h *Handler) Activate(c *gin.Context) {
	h.setActive(c, true)
}
