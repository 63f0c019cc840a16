package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/middleware"
)

// userHandler serves the authenticated user's own profile actions.
type userHandler struct {
	userSvc portssvc.UserSvcFacade
}

func registerUserRoutes(rg *gin.RouterGroup, userSvc portssvc.UserSvcFacade) {
	h := &userHandler{userSvc: userSvc}

	users := rg.Group("/users")
	{
		users.POST("/change-password", h.changePassword)
	}
	// Logout lives under /auth like login, but needs the token it revokes.
	rg.POST("/auth/logout", h.logout)
}

// changePassword rotates the caller's password. On success every outstanding
// session is revoked, so the client has to log in again with the new
// password.
func (h *userHandler) changePassword(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Password changed", slog.String("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Password changed, please log in again"})
}

func (h *userHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.userSvc.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
