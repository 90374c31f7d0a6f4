package onboarding

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/pkg/response"
)

// CreateTokenRequest is the body for POST /onboarding-tokens.
type CreateTokenRequest struct {
	AdminSecret string `json:"admin_secret" binding:"required"`
}

// Handler handles onboarding token HTTP endpoints. Token creation is gated
// by the bootstrap admin secret rather than a JWT, so invitation links can
// be minted before any tenant exists.
type Handler struct {
	repo        *Repository
	adminSecret string
	logger      *zap.Logger
}

// NewHandler creates an onboarding handler.
func NewHandler(repo *Repository, adminSecret string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, adminSecret: adminSecret, logger: logger}
}

// Create handles POST /onboarding-tokens.
func (h *Handler) Create(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if h.adminSecret == "" {
		response.BadRequest(c, "onboarding links are not configured")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminSecret), []byte(h.adminSecret)) != 1 {
		response.Unauthorized(c, "incorrect secret")
		return
	}
	t, err := h.repo.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("create onboarding token failed", zap.Error(err))
		response.Internal(c, "failed to create token")
		return
	}
	response.Created(c, gin.H{"token": t.Token})
}

// Validate handles GET /onboarding-tokens/:token/validate.
func (h *Handler) Validate(c *gin.Context) {
	valid, err := h.repo.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.logger.Error("validate onboarding token failed", zap.Error(err))
		response.Internal(c, "failed to validate token")
		return
	}
	response.OK(c, gin.H{"valid": valid})
}
