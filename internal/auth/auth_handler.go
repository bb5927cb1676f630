package auth

import (
	"net/http"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	jwtManager *JWTManager
	users      *UserDirectory
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *JWTManager, users *UserDirectory, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		users:      users,
		logger:     logger,
	}
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"manager"`
	Password string `json:"password" binding:"required" example:"manager123"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Type      string    `json:"type" example:"Bearer"`
	Role      Role      `json:"role" example:"manager"`
	ExpiresIn int       `json:"expires_in" example:"600"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-15T12:00:00Z"`
}

// Login handles POST /api/v1/auth/login
// @Summary      Login and get JWT token
// @Description  Authenticates a user and returns a signed JWT carrying the user's role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  errors.StandardError
// @Failure      401      {object}  errors.StandardError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid login request", zap.Error(err))
		c.Error(errors.NewValidationError("invalid request", "username or password"))
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("Invalid credentials", zap.String("username", req.Username))
		c.Error(errors.NewUnauthorized("invalid credentials", "username or password incorrect"))
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		c.Error(errors.NewInternalError("failed to generate token", err))
		return
	}

	h.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Type:      "Bearer",
		Role:      user.Role,
		ExpiresIn: int(h.jwtManager.TTL().Seconds()),
		ExpiresAt: expiresAt,
	})
}
