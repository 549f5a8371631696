// Command fdash_export writes the stored items, accounts and transactions as the
// JSON files read by the older dashboard scripts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/SscSPs/finance_dashboard_app/internal/adapters/legacyexport"
	"github.com/SscSPs/finance_dashboard_app/internal/core/services"
	"github.com/SscSPs/finance_dashboard_app/internal/platform/config"
	"github.com/SscSPs/finance_dashboard_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/SscSPs/finance_dashboard_app/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.ExportDir, "directory the export files are written to")
	includeSecrets := flag.Bool("include-secrets", cfg.ExportIncludeSecrets, "write provider access tokens unmasked")
	flag.Parse()

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	sealer, err := utils.NewSealer(cfg.TokenEncryptionKey)
	if err != nil {
		logger.Error("Invalid token encryption key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	exporter := services.NewExportService(pgsql.NewRepositoryProvider(dbPool, sealer), legacyexport.NewWriter(*includeSecrets))
	files, err := exporter.ExportLegacy(ctx, *dir)
	if err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Export written", slog.Any("files", files), slog.Bool("include_secrets", *includeSecrets))
}
