package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
)

type exportService struct {
	BaseService
	repos  portsrepo.RepositoryProvider
	writer sinks.ExportWriter
}

// NewExportService creates the legacy export service
func NewExportService(repos portsrepo.RepositoryProvider, writer sinks.ExportWriter) portssvc.ExportSvc {
	return &exportService{repos: repos, writer: writer}
}

var _ portssvc.ExportSvc = (*exportService)(nil)

func (s *exportService) ExportLegacy(ctx context.Context, dir string) ([]string, error) {
	var snap domain.ExportSnapshot
	var err error

	if snap.Items, err = s.repos.ItemRepo.ListItems(ctx); err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	if snap.Accounts, err = s.repos.AccountRepo.ListAccounts(ctx); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if snap.Transactions, err = s.repos.TransactionRepo.ListAllTransactions(ctx); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	paths, err := s.writer.Write(dir, snap)
	if err != nil {
		s.LogError(ctx, err, "Legacy export failed", slog.String("dir", dir))
		return paths, fmt.Errorf("failed to write export: %w", err)
	}
	s.LogInfo(ctx, "Legacy export written",
		slog.String("dir", dir),
		slog.Int("items", len(snap.Items)),
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("transactions", len(snap.Transactions)))
	return paths, nil
}
