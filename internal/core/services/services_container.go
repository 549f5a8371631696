package services

import (
	portsproviders "github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
	"github.com/SscSPs/finance_dashboard_app/internal/platform/config"
)

// Adapters holds the outbound integrations services depend on. Nil members
// disable the features that need them.
type Adapters struct {
	AccountProviders []portsproviders.AccountProvider
	PlaidLinker      portsproviders.Linker
	ItemSyncer       portsproviders.ItemSyncer
	Holdings         portsproviders.HoldingsFetcher
	TellerLister     portsproviders.AccountLister
	Archiver         sinks.Archiver
	Publisher        sinks.EventPublisher
	ExportWriter     sinks.ExportWriter
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, adapters Adapters) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.TxManager,
		WithUpsertBatchSize(cfg.UpsertBatchSize),
	)
	container.Transaction = NewTransactionService(repos.AccountRepo, repos.TransactionRepo, repos.TxManager)

	refreshOpts := []RefreshServiceOption{
		WithAccountProviders(adapters.AccountProviders...),
		WithRefreshTimeout(cfg.RefreshTimeout),
		WithRefreshCooldown(cfg.RefreshCooldown),
	}
	if adapters.ItemSyncer != nil {
		refreshOpts = append(refreshOpts, WithItemSyncer(adapters.ItemSyncer))
	}
	if adapters.Archiver != nil {
		refreshOpts = append(refreshOpts, WithArchiver(adapters.Archiver))
	}
	if adapters.Publisher != nil {
		refreshOpts = append(refreshOpts, WithEventPublisher(adapters.Publisher, cfg.KafkaRefreshTopic))
	}
	container.Refresh = NewRefreshService(repos.AccountRepo, repos.ItemRepo, repos.TxManager, refreshOpts...)

	linkOpts := []LinkServiceOption{WithDefaultProducts(cfg.PlaidProducts)}
	if adapters.PlaidLinker != nil {
		linkOpts = append(linkOpts, WithPlaidLinker(adapters.PlaidLinker))
	}
	if adapters.TellerLister != nil {
		linkOpts = append(linkOpts, WithTellerLister(adapters.TellerLister))
	}
	container.Link = NewLinkService(repos.ItemRepo, container.Account, linkOpts...)

	var reportingOpts []ReportingServiceOption
	if adapters.Holdings != nil {
		reportingOpts = append(reportingOpts, WithHoldingsFetcher(adapters.Holdings))
	}
	container.Reporting = NewReportingService(repos, reportingOpts...)

	if adapters.ExportWriter != nil {
		container.Export = NewExportService(repos, adapters.ExportWriter)
	}

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.RefreshSvcFacade     = (*refreshService)(nil)
	_ portssvc.LinkSvcFacade        = (*linkService)(nil)
	_ portssvc.ReportingSvcFacade   = (*reportingService)(nil)
	_ portssvc.ExportSvc            = (*exportService)(nil)
)
