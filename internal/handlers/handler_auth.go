package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/middleware"
	"github.com/sleepystack/vaulta/internal/platform/config"
	"github.com/sleepystack/vaulta/internal/utils"
)

// authHandler handles registration and login.
type authHandler struct {
	cfg     *config.Config
	userSvc portssvc.UserSvcFacade
}

func newAuthHandler(cfg *config.Config, userSvc portssvc.UserSvcFacade) *authHandler {
	return &authHandler{cfg: cfg, userSvc: userSvc}
}

func registerAuthRoutes(r *gin.Engine, cfg *config.Config, userSvc portssvc.UserSvcFacade, rateLimit gin.HandlerFunc) {
	h := newAuthHandler(cfg, userSvc)

	auth := r.Group("/api/v1/auth", rateLimit)
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}
}

func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	user, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(user.UserID, string(user.Role), user.TokenVersion,
		h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("User registered", slog.String("username", user.Username))
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
}

func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	user, err := h.userSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Deliberately vague: do not reveal whether the username exists.
		logger.Warn("Login failed", slog.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := utils.GenerateJWT(user.UserID, string(user.Role), user.TokenVersion,
		h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("User logged in", slog.String("username", user.Username))
	c.JSON(http.StatusOK, dto.AuthResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
}
