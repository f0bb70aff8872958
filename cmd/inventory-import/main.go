// Command inventory-import resolves an exported card list against the
// catalog and records the owner's collection. Unresolvable rows abort the
// run by default so source data can be corrected and re-imported.
//
// Flags:
//
//	--file        path to the export CSV
//	--owner       username owning the imported collection
//	--keep-going  skip unresolvable rows and report them instead of aborting
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/cardvault/cardvault/internal/adapter/postgres"
	"github.com/cardvault/cardvault/internal/adapter/postgres/catalog"
	"github.com/cardvault/cardvault/internal/adapter/postgres/collection"
	"github.com/cardvault/cardvault/internal/app"
	"github.com/cardvault/cardvault/internal/config"
	"github.com/cardvault/cardvault/internal/importer/inventory"
	"github.com/cardvault/cardvault/internal/migrate"
)

// Compile-time interface assertions.
var (
	_ inventory.Catalog    = (*catalog.Repo)(nil)
	_ inventory.Collection = (*collection.Repo)(nil)
)

func main() {
	fileFlag := pflag.String("file", "", "path to the export CSV")
	ownerFlag := pflag.String("owner", "", "username owning the imported collection")
	keepGoingFlag := pflag.Bool("keep-going", false, "skip unresolvable rows instead of aborting")
	pflag.Parse()

	if *fileFlag == "" || *ownerFlag == "" {
		pflag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting inventory import", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := migrate.Up(ctx, cfg.Database.DSN, cfg.Import.LockKey); err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	f, err := os.Open(*fileFlag)
	if err != nil {
		logger.Error("open export file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	importer := inventory.NewImporter(
		logger,
		catalog.NewRepo(pool),
		collection.NewRepo(pool),
		postgres.NewTxManager(pool),
		*keepGoingFlag || cfg.Import.KeepGoing,
	)

	report, err := importer.Run(ctx, f, *ownerFlag)
	if err != nil {
		logger.Error("inventory import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("inventory import succeeded",
		slog.Int("rows", report.Rows),
		slog.Int("resolved", report.Resolved),
		slog.Int("skipped", report.Skipped),
		slog.Int64("quantity", report.Quantity),
	)
}
