package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sleepystack/vaulta/internal/core/domain"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/middleware"
)

// accountHandler handles the account lifecycle endpoints.
type accountHandler struct {
	accountSvc portssvc.AccountSvcFacade
	userSvc    portssvc.UserSvcFacade
}

func newAccountHandler(accountSvc portssvc.AccountSvcFacade, userSvc portssvc.UserSvcFacade) *accountHandler {
	return &accountHandler{accountSvc: accountSvc, userSvc: userSvc}
}

func registerAccountRoutes(rg *gin.RouterGroup, accountSvc portssvc.AccountSvcFacade, userSvc portssvc.UserSvcFacade) {
	h := newAccountHandler(accountSvc, userSvc)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/open", h.openAccount)
		accounts.GET("/me", h.listMyAccounts)
		accounts.GET("/:accountNumber", h.getAccount)
		accounts.DELETE("/:accountNumber", h.closeAccount)
	}
}

func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	account, err := h.accountSvc.OpenAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account opened",
		slog.String("account_number", account.AccountNumber),
		slog.String("account_type", string(account.AccountType)))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(*account, h.usernameOf(c, account.OwnerID)))
}

func (h *accountHandler) listMyAccounts(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accounts, err := h.accountSvc.ListAccountsByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts, h.usernameOf(c, userID)))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountNumber := c.Param("accountNumber")

	account, err := h.accountSvc.GetAccount(c.Request.Context(), accountNumber, userID, isAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(*account, h.usernameOf(c, account.OwnerID)))
}

func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountNumber := c.Param("accountNumber")

	if err := h.accountSvc.CloseAccount(c.Request.Context(), accountNumber, userID, isAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account closed", slog.String("account_number", accountNumber))
	c.JSON(http.StatusOK, gin.H{"message": "Account closed"})
}

// usernameOf resolves a user id to its username for response bodies. A
// lookup failure degrades to an empty name rather than failing the request.
func (h *accountHandler) usernameOf(c *gin.Context, userID string) string {
	user, err := h.userSvc.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return ""
	}
	return user.Username
}

func isAdmin(c *gin.Context) bool {
	role, ok := middleware.GetUserRoleFromContext(c)
	return ok && role == string(domain.RoleAdmin)
}
