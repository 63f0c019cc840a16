package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/middleware"
)

// adminHandler serves the admin aggregate views and user management actions.
// Every route here sits behind the RequireAdmin middleware.
type adminHandler struct {
	services *portssvc.ServiceContainer
}

func registerAdminRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &adminHandler{services: services}

	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/stats", h.stats)
		admin.GET("/users", h.listUsers)
		admin.GET("/accounts", h.listAccounts)
		admin.GET("/transactions", h.listTransactions)
		admin.PATCH("/users/:userID/status", h.updateUserStatus)
		admin.POST("/users/:userID/promote", h.promoteUser)
		admin.POST("/users/:userID/reset-password", h.resetPassword)
		admin.PATCH("/accounts/:accountNumber/status", h.updateAccountStatus)
	}
}

func (h *adminHandler) stats(c *gin.Context) {
	stats, err := h.services.Query.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *adminHandler) listUsers(c *gin.Context) {
	users, err := h.services.User.ListUsersForManagement(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *adminHandler) listAccounts(c *gin.Context) {
	accounts, err := h.services.Account.ListAllAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	// Resolve owner usernames once per owner.
	usernames := map[string]string{}
	out := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		name, ok := usernames[account.OwnerID]
		if !ok {
			if user, err := h.services.User.GetUserByID(c.Request.Context(), account.OwnerID); err == nil {
				name = user.Username
			}
			usernames[account.OwnerID] = name
		}
		out = append(out, dto.ToAccountResponse(account, name))
	}
	c.JSON(http.StatusOK, out)
}

func (h *adminHandler) listTransactions(c *gin.Context) {
	page, size := pageParams(c)

	var typeFilter *domain.EntryType
	if raw := c.Query("type"); raw != "" {
		t := domain.EntryType(raw)
		switch t {
		case domain.Deposit, domain.Withdrawal, domain.Transfer:
			typeFilter = &t
		default:
			respondBadRequest(c, fmt.Sprintf("unknown transaction type %q", raw))
			return
		}
	}

	result, err := h.services.Query.PagedTransactions(c.Request.Context(), typeFilter, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// updateUserStatus toggles ACTIVE and FROZEN when the request carries no
// body, or applies the requested status when it does. A present but invalid
// body is rejected before anything is mutated. Either way a freeze revokes
// the user's outstanding sessions.
func (h *adminHandler) updateUserStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	targetUserID := c.Param("userID")

	var req dto.UpdateUserStatusRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		if err := h.services.User.UpdateUserStatus(c.Request.Context(), targetUserID, req.Status); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": string(req.Status)})
		return
	}
	if !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	user, err := h.services.User.ToggleUserStatus(c.Request.Context(), targetUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("User status toggled",
		slog.String("target_user_id", targetUserID),
		slog.String("status", string(user.Status)))
	c.JSON(http.StatusOK, gin.H{"status": string(user.Status)})
}

func (h *adminHandler) promoteUser(c *gin.Context) {
	targetUserID := c.Param("userID")

	if err := h.services.User.PromoteToAdmin(c.Request.Context(), targetUserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin"})
}

func (h *adminHandler) resetPassword(c *gin.Context) {
	targetUserID := c.Param("userID")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	if err := h.services.User.ResetPassword(c.Request.Context(), targetUserID, req.TempPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

// updateAccountStatus closes an account on behalf of its owner. Closed
// accounts are terminal, so a request to re-activate one is rejected.
func (h *adminHandler) updateAccountStatus(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	if req.Status != domain.AccountClosed {
		respondError(c, fmt.Errorf("%w: closed accounts cannot be reopened", apperrors.ErrValidation))
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	if err := h.services.Account.CloseAccount(c.Request.Context(), accountNumber, userID, true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.AccountClosed)})
}
