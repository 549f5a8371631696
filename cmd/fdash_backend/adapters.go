package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_dashboard_app/internal/adapters/archive"
	"github.com/SscSPs/finance_dashboard_app/internal/adapters/events"
	"github.com/SscSPs/finance_dashboard_app/internal/adapters/events/kafka"
	"github.com/SscSPs/finance_dashboard_app/internal/adapters/httpretry"
	"github.com/SscSPs/finance_dashboard_app/internal/adapters/providers/plaid"
	"github.com/SscSPs/finance_dashboard_app/internal/adapters/providers/teller"
	"github.com/SscSPs/finance_dashboard_app/internal/core/services"
	"github.com/SscSPs/finance_dashboard_app/internal/platform/config"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
)

// closer collects cleanup functions run on shutdown in reverse order.
type closer []func()

func (c closer) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// buildAdapters creates the outbound integrations that are configured and
// leaves the others unset.
func buildAdapters(ctx context.Context, cfg *config.Config, posthog *utils.PosthogClientWrapper, logger *slog.Logger) (services.Adapters, closer, error) {
	var adapters services.Adapters
	var cleanup closer

	retryOpts := []httpretry.Option{
		httpretry.WithMaxAttempts(cfg.HTTPMaxAttempts),
		httpretry.WithInitialDelay(cfg.HTTPInitialBackoff),
	}

	tellerHTTP := httpretry.New(append(retryOpts, httpretry.WithClientCertificate(cfg.TellerCertFile, cfg.TellerKeyFile))...)
	tellerProvider := teller.NewProvider(tellerHTTP, cfg.TellerAPIBaseURL)
	adapters.AccountProviders = append(adapters.AccountProviders, tellerProvider)
	adapters.TellerLister = tellerProvider
	if cfg.TellerCertFile == "" {
		logger.Warn("Teller client certificate not configured, Teller calls will likely be rejected")
	}

	plaidClient, err := plaid.NewClient(plaid.ClientConfig{
		Environment: cfg.PlaidEnv,
		ClientID:    cfg.PlaidClientID,
		Secret:      cfg.PlaidSecret,
		HTTP:        httpretry.New(retryOpts...),
	})
	switch {
	case errors.Is(err, plaid.ErrNotConfigured):
		logger.Warn("Plaid credentials not configured, Plaid features disabled")
	case err != nil:
		return adapters, cleanup, fmt.Errorf("create plaid client: %w", err)
	default:
		plaidProvider := plaid.NewProvider(plaidClient)
		adapters.AccountProviders = append(adapters.AccountProviders, plaidProvider)
		adapters.PlaidLinker = plaidProvider
		adapters.ItemSyncer = plaidProvider
		adapters.Holdings = plaidProvider
		logger.Info("Plaid provider configured", slog.String("environment", cfg.PlaidEnv))
	}

	if cfg.ArchiveGCSBucket != "" {
		gcs, err := archive.NewGCSArchiver(ctx, cfg.ArchiveGCSBucket, "refresh", cfg.GCSCredentialsFile)
		if err != nil {
			return adapters, cleanup, err
		}
		cleanup = append(cleanup, func() {
			if err := gcs.Close(); err != nil {
				logger.Error("Failed to close storage client", slog.String("error", err.Error()))
			}
		})
		adapters.Archiver = gcs
		logger.Info("Archiving refresh payloads to GCS", slog.String("bucket", cfg.ArchiveGCSBucket))
	} else if cfg.ArchiveDir != "" {
		fileArchiver, err := archive.NewFileArchiver(cfg.ArchiveDir)
		if err != nil {
			return adapters, cleanup, err
		}
		adapters.Archiver = fileArchiver
		logger.Info("Archiving refresh payloads to disk", slog.String("dir", cfg.ArchiveDir))
	}

	var publishers events.Fanout
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		cleanup = append(cleanup, func() {
			if err := publisher.Close(); err != nil {
				logger.Error("Failed to close kafka writer", slog.String("error", err.Error()))
			}
		})
		publishers = append(publishers, publisher)
		logger.Info("Publishing refresh events to kafka", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaRefreshTopic))
	}
	if posthog.IsInitialized() {
		publishers = append(publishers, posthog)
	}
	if len(publishers) > 0 {
		adapters.Publisher = publishers
	}

	return adapters, cleanup, nil
}
