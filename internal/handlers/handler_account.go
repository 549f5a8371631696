package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/dto"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	refreshService portssvc.RefreshSvcFacade
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, refreshService portssvc.RefreshSvcFacade) {
	h := &accountHandler{accountService: accountService, refreshService: refreshService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/upsert", h.upsertAccounts)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/history", h.getAccountHistory)
		accounts.POST("/:accountID/refresh", h.refreshAccount)
	}
}

// upsertAccounts godoc
// @Summary Upsert provider accounts
// @Description Inserts new accounts and updates known ones. Records without an id are skipped.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   request body dto.UpsertAccountsRequest true "Provider and account records"
// @Success 200 {object} domain.UpsertSummary
// @Failure 400 {object} map[string]string "Invalid input format or unknown provider"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to upsert accounts"
// @Security BearerAuth
// @Router /accounts/upsert [post]
func (h *accountHandler) upsertAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	summary, err := h.accountService.UpsertAccounts(c.Request.Context(), userID, domain.LinkProvider(req.Provider), req.ToRecords())
	if err != nil {
		respondError(c, logger, "upsert accounts", err)
		return
	}
	logger.Info("Accounts upserted",
		slog.String("provider", req.Provider),
		slog.Int("inserted", summary.Inserted),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped))
	c.JSON(http.StatusOK, summary)
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists every linked account
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, "list accounts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Provider account id"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to get account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "get account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountHistory godoc
// @Summary Get the balance history of an account
// @Description Returns one snapshot per day on which the account was written, oldest first
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Provider account id"
// @Success 200 {array} dto.AccountHistoryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to get account history"
// @Security BearerAuth
// @Router /accounts/{accountID}/history [get]
func (h *accountHandler) getAccountHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	history, err := h.accountService.GetAccountHistory(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "get account history", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountHistoryResponse(history))
}

// refreshAccount godoc
// @Summary Refresh one account
// @Description Pulls the balance and transactions of an account from its provider
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Provider account id"
// @Success 200 {object} dto.RefreshAccountResponse
// @Failure 400 {object} map[string]string "Account has an unknown provider"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to refresh account"
// @Security BearerAuth
// @Router /accounts/{accountID}/refresh [post]
func (h *accountHandler) refreshAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	logger = logger.With(slog.String("account_id", accountID))

	result, err := h.refreshService.RefreshAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "refresh account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRefreshAccountResponse(*result))
}
