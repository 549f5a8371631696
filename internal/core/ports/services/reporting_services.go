package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// ReportingSvcFacade defines the aggregated dashboard views
type ReportingSvcFacade interface {
	// CashFlow aggregates income and expenses per calendar month.
	CashFlow(ctx context.Context) (*domain.CashFlowReport, error)

	// Institutions groups linked items and accounts by institution.
	Institutions(ctx context.Context) ([]domain.InstitutionSummary, error)

	// Holdings returns the investment holdings of a Plaid item.
	Holdings(ctx context.Context, itemID string) ([]domain.Holding, error)

	// SaveGroup stores a named group of accounts for a user.
	SaveGroup(ctx context.Context, userID string, name string, accountIDs []string) (*domain.AccountGroup, error)

	// ListGroups returns the groups of a user.
	ListGroups(ctx context.Context, userID string) ([]domain.AccountGroup, error)
}

// ExportSvc writes the legacy JSON export files
type ExportSvc interface {
	// ExportLegacy writes the export into dir and returns the written file paths.
	ExportLegacy(ctx context.Context, dir string) ([]string, error)
}
