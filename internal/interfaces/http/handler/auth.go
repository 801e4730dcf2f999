package handler

import (
	"crypto/subtle"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buildium/backend/internal/infrastructure/auth"
	"github.com/buildium/backend/internal/infrastructure/config"
	"github.com/buildium/backend/internal/infrastructure/logger"
)

// AuthHandler handles authentication HTTP requests. The application is
// operated by a single administrator whose credentials come from
// configuration, there is no user store.
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	authCfg    config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *auth.JWTService, authCfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		authCfg:    authCfg,
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the login response body
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
}

// Login godoc
// @Summary      Administrator login
// @Description  Authenticates the administrator and returns a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	usernameMatch := subtle.ConstantTimeCompare(
		[]byte(req.Username), []byte(h.authCfg.AdminUsername)) == 1
	passwordMatch := auth.CheckPassword(req.Password, h.authCfg.AdminPasswordHash)

	if !usernameMatch || !passwordMatch {
		logger.GetGinLogger(c).Warn("failed login attempt",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()))
		h.Unauthorized(c, "Invalid username or password")
		return
	}

	token, err := h.jwtService.Generate(req.Username)
	if err != nil {
		h.InternalError(c, "Could not create session token")
		return
	}

	h.Success(c, LoginResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
		Username:    req.Username,
	})
}
