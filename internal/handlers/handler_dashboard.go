package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/middleware"
)

type dashboardHandler struct {
	querySvc portssvc.QuerySvcFacade
}

func registerDashboardRoutes(rg *gin.RouterGroup, querySvc portssvc.QuerySvcFacade) {
	h := &dashboardHandler{querySvc: querySvc}

	dashboard := rg.Group("/dashboard")
	dashboard.GET("/summary", h.summary)
}

func (h *dashboardHandler) summary(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.querySvc.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
