package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/dto"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}
	rg.GET("/transactions", h.listTransactions)
	rg.POST("/accounts/:accountID/transactions", h.upsertTransactions)
}

// upsertTransactions godoc
// @Summary Upsert account transactions
// @Description Inserts or updates transactions of an account by provider transaction id. The last occurrence of a repeated id wins; records without an id are skipped.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   transactions body dto.UpsertTransactionsRequest true "Transactions"
// @Success 200 {object} domain.TransactionUpsertResult
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to upsert transactions"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [post]
func (h *transactionHandler) upsertTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	accountID := c.Param("accountID")

	result, err := h.transactionService.UpsertTransactions(c.Request.Context(), accountID, req.ToDomain(accountID))
	if err != nil {
		respondError(c, logger, "upsert transactions", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions with their account, newest first. Out of range paging values fall back to defaults.
// @Tags transactions
// @Produce  json
// @Param   page query int false "Page number (default 1)"
// @Param   page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), params.Page, params.PageSize)
	if err != nil {
		respondError(c, logger, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(page))
}
