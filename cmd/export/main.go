// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command export runs one full catalog export.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables, then apply CLI overrides.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis if configured (snapshot pointer publish).
//  5. Run the pipeline and publish the snapshot.
//
// The process exits non-zero on any failure; a partially written snapshot
// is never published.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/export"
	"github.com/taibuivan/nijidex/internal/platform/config"
	"github.com/taibuivan/nijidex/internal/platform/constants"
	pgstore "github.com/taibuivan/nijidex/internal/platform/postgres"
	redisstore "github.com/taibuivan/nijidex/internal/platform/redis"
	"github.com/taibuivan/nijidex/internal/snapshot"
	"github.com/taibuivan/nijidex/pkg/pagination"
)

// cliOptions are the per-run overrides on top of the environment config.
type cliOptions struct {
	Output      string `short:"o" long:"output" description:"Snapshot root directory (overrides SNAPSHOT_ROOT)"`
	BaseURL     string `long:"base-url" description:"Public site origin for feed/sitemap links (overrides BASE_URL)"`
	Workers     int    `long:"workers" description:"Parallel normalization workers (overrides WORKER_COUNT)"`
	SkipFeed    bool   `long:"skip-feed" description:"Do not render feed.xml"`
	SkipSitemap bool   `long:"skip-sitemap" description:"Do not render sitemap.xml"`
	DryRun      bool   `long:"dry-run" description:"Run every stage but write and publish nothing"`
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Nijidex] export_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	if opts.Output != "" {
		cfg.SnapshotRoot = opts.Output
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Workers > 0 {
		cfg.WorkerCount = opts.Workers
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("snapshot_root", cfg.SnapshotRoot),
		slog.Int("workers", cfg.WorkerCount),
	)

	// Root context, cancelled on SIGTERM/SIGINT so a long bulk read or
	// normalization pass aborts cleanly instead of leaving staging debris.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis (optional snapshot pointer publish) ──────────────────────
	var publish func(context.Context, string) error
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		publish = func(ctx context.Context, version string) error {
			return redisstore.PublishVersion(ctx, rdb, version)
		}
	}

	// ── 5. Pipeline ───────────────────────────────────────────────────────
	store := catalog.NewPostgresStore(pool)
	writer := snapshot.NewWriter(cfg.SnapshotRoot, log)

	runner := export.NewRunner(store, writer, log, export.Options{
		Workers:     cfg.WorkerCount,
		MaxDropRate: cfg.MaxDropRate,
		BaseURL:     cfg.BaseURL,
		Policy:      pagination.Default(),
		SkipFeed:    opts.SkipFeed,
		SkipSitemap: opts.SkipSitemap,
		DryRun:      opts.DryRun,
		Publish:     publish,
	})

	runCtx, runCancel := context.WithTimeout(ctx, constants.BulkReadTimeout)
	defer runCancel()

	result, err := runner.Run(runCtx, uuid.Must(uuid.NewV7()).String())
	must(log, err, "run export")

	log.Info("export_complete",
		slog.String("version", result.Version),
		slog.Int("rows", result.Rows),
		slog.Int("works", result.Works),
		slog.Int("dropped", result.Dropped),
		slog.Int("search_records", result.SearchRecords),
		slog.Int("groups", result.Groups),
		slog.Int("page_files", result.PageFiles),
		slog.Int("related_sets", result.RelatedSets),
		slog.Duration("duration", result.Duration),
	)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
