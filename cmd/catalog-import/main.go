// Command catalog-import rebuilds the card catalog from the provider's bulk
// feeds. It replaces every catalog row in one transaction; owned-item rows
// are carried across the reload by printing identity and re-linked to the
// new catalog. It is intended to be run offline, not as part of a serving
// path.
//
// Flags:
//
//	--all      path to the complete feed (every version of every card)
//	--default  path to the curated feed (one default version per card)
//	--sets     path to the sets listing (optional)
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
	"github.com/cardvault/cardvault/internal/importer/bulkload"
	"github.com/cardvault/cardvault/internal/migrate"
)

// Compile-time interface assertions.
var (
	_ bulkload.CatalogRepo  = (*catalog.Repo)(nil)
	_ bulkload.HoldingsRepo = (*collection.Repo)(nil)
)

func main() {
	allFlag := pflag.String("all", "", "path to the complete feed")
	defaultFlag := pflag.String("default", "", "path to the curated default feed")
	setsFlag := pflag.String("sets", "", "path to the sets listing (optional)")
	pflag.Parse()

	if *allFlag == "" || *defaultFlag == "" {
		pflag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting catalog import", slog.String("version", app.BuildVersion()))

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

	loader := bulkload.NewLoader(logger, catalog.NewRepo(pool), collection.NewRepo(pool), postgres.NewTxManager(pool), bulkload.Config{
		AllPath:     *allFlag,
		DefaultPath: *defaultFlag,
		SetsPath:    *setsFlag,
		BatchSize:   cfg.Import.BatchSize,
	})

	stats, err := loader.Run(ctx)
	if err != nil {
		logger.Error("catalog load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("catalog load succeeded",
		slog.Int64("cards", stats.Cards),
		slog.Int64("faces", stats.Faces),
		slog.Int("sets", stats.Sets),
		slog.Int64("holdings", stats.Holdings),
		slog.Duration("duration", stats.Duration),
	)
}
