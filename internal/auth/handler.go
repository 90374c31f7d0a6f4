package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservar-app/backend/internal/models"
	"github.com/reservar-app/backend/pkg/response"
	"github.com/reservar-app/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login. Tenant admins and the super admin share
// the endpoint; the issued token carries the tenant scope (or none).
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.TenantID, user.Email, string(user.Role))
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to generate token")
		return
	}
	if err := h.repo.TouchLogin(c.Request.Context(), user.ID); err != nil {
		h.logger.Warn("record login failed", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// userIDFromContext reads the user ID the JWT middleware stored under
// "user_id". The key is a literal here because middleware imports this
// package for token validation.
func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Me handles GET /auth/me. Returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}
