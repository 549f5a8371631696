package dto

import (
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CashFlowMonth is one month of the cash flow chart.
type CashFlowMonth struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// CashFlowMetadata holds the report totals.
type CashFlowMetadata struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	TotalTransactions int             `json:"total_transactions"`
}

// CashFlowResponse is the income versus expenses report.
type CashFlowResponse struct {
	Status   string           `json:"status"`
	Data     []CashFlowMonth  `json:"data"`
	Metadata CashFlowMetadata `json:"metadata"`
}

// ToCashFlowResponse converts a domain report
func ToCashFlowResponse(r *domain.CashFlowReport) CashFlowResponse {
	data := make([]CashFlowMonth, 0, len(r.Months))
	for _, m := range r.Months {
		data = append(data, CashFlowMonth{Month: m.Month, Income: m.Income, Expenses: m.Expenses})
	}
	return CashFlowResponse{
		Status: "success",
		Data:   data,
		Metadata: CashFlowMetadata{
			TotalIncome:       r.TotalIncome,
			TotalExpenses:     r.TotalExpenses,
			TotalTransactions: r.TotalTransactions,
		},
	}
}

// SaveGroupRequest defines a named group of accounts.
type SaveGroupRequest struct {
	GroupName  string   `json:"groupName" binding:"required"`
	AccountIDs []string `json:"accountIds" binding:"required,min=1,dive,required"`
}

// GroupResponse defines the data returned for an account group.
type GroupResponse struct {
	GroupID    string    `json:"groupID"`
	Name       string    `json:"name"`
	AccountIDs []string  `json:"accountIds"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToGroupResponse converts a domain group
func ToGroupResponse(g *domain.AccountGroup) GroupResponse {
	return GroupResponse{GroupID: g.GroupID, Name: g.Name, AccountIDs: g.AccountIDs, CreatedAt: g.CreatedAt}
}

// ToListGroupResponse converts domain groups
func ToListGroupResponse(groups []domain.AccountGroup) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, ToGroupResponse(&groups[i]))
	}
	return out
}
