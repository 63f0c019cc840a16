package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/middleware"
)

// transactionHandler exposes the transaction engine over HTTP.
type transactionHandler struct {
	txnSvc   portssvc.TransactionSvcFacade
	querySvc portssvc.QuerySvcFacade
}

func newTransactionHandler(txnSvc portssvc.TransactionSvcFacade, querySvc portssvc.QuerySvcFacade) *transactionHandler {
	return &transactionHandler{txnSvc: txnSvc, querySvc: querySvc}
}

func registerTransactionRoutes(rg *gin.RouterGroup, txnSvc portssvc.TransactionSvcFacade, querySvc portssvc.QuerySvcFacade) {
	h := newTransactionHandler(txnSvc, querySvc)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/deposit", h.deposit)
		transactions.POST("/withdraw", h.withdraw)
		transactions.POST("/transfer", h.transfer)
		transactions.GET("/:accountNumber/history", h.history)
	}
}

func (h *transactionHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	entry, err := h.txnSvc.Deposit(c.Request.Context(), req.AccountNumber, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Deposit committed",
		slog.Int64("entry_id", entry.ID),
		slog.String("account_number", req.AccountNumber))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*entry))
}

func (h *transactionHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	entry, err := h.txnSvc.Withdraw(c.Request.Context(), req.AccountNumber, req.Amount, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Withdrawal committed",
		slog.Int64("entry_id", entry.ID),
		slog.String("account_number", req.AccountNumber))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*entry))
}

func (h *transactionHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	if req.TargetAccountNumber == "" {
		respondBadRequest(c, "targetAccountNumber is required for transfers")
		return
	}

	entry, err := h.txnSvc.Transfer(c.Request.Context(), req.AccountNumber, req.TargetAccountNumber, req.Amount, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Transfer committed",
		slog.Int64("entry_id", entry.ID),
		slog.String("from_account", req.AccountNumber),
		slog.String("to_account", req.TargetAccountNumber))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*entry))
}

func (h *transactionHandler) history(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountNumber := c.Param("accountNumber")
	page, size := pageParams(c)

	result, err := h.querySvc.History(c.Request.Context(), accountNumber, userID, isAdmin(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
