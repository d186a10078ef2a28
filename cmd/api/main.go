// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the BookGod HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and apply migrations.
//  4. Connect to Redis and MinIO.
//  5. Wire repositories, services and HTTP handlers.
//  6. Register maintenance jobs.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/bookgod/internal/api"
	"github.com/taibuivan/bookgod/internal/core/author"
	"github.com/taibuivan/bookgod/internal/core/book"
	"github.com/taibuivan/bookgod/internal/platform/config"
	"github.com/taibuivan/bookgod/internal/platform/constants"
	"github.com/taibuivan/bookgod/internal/platform/migration"
	pgstore "github.com/taibuivan/bookgod/internal/platform/postgres"
	redisstore "github.com/taibuivan/bookgod/internal/platform/redis"
	"github.com/taibuivan/bookgod/internal/platform/scheduler"
	"github.com/taibuivan/bookgod/internal/platform/sec"
	"github.com/taibuivan/bookgod/internal/platform/storage"
	"github.com/taibuivan/bookgod/internal/social/forum"
	"github.com/taibuivan/bookgod/internal/users/auth"
	"github.com/taibuivan/bookgod/internal/users/profile"
	"github.com/taibuivan/bookgod/internal/users/purchase"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "bookgod"))
	slog.SetDefault(log)

	log.Info("[BookGod] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "bookgod"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Startup gets a hard deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives until shutdown; owns background goroutines such as the rate limiter janitor.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. Redis & Object Storage ─────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	artwork, err := storage.NewMinioStore(startupCtx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, log)
	must(log, err, "connect to object storage")

	// ── 5. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "database", Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "cache", Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
		{Name: "storage", Probe: artwork.Ping},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	profileService := profile.NewService(profile.NewPostgresRepository(pool), log)

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		auth.NewLoginFailureCounter(rdb),
		jwtSvc,
		profileService,
		log,
	)

	bookRepository := book.NewBookRepository(pool)

	purchaseService := purchase.NewService(
		purchase.NewPostgresRepository(pool),
		purchase.NewSessionStore(rdb),
		bookRepository,
		purchase.Options{
			SessionTTL:   cfg.CheckoutTTL,
			Currency:     cfg.CheckoutCurrency,
			ExchangeRate: cfg.CheckoutExchangeRate,
			BaseURL:      cfg.PublicBaseURL,
		},
		log,
	)

	bookService := book.NewService(book.Dependencies{
		Books:         bookRepository,
		Ratings:       book.NewRatingRepository(pool),
		Cache:         book.NewInfoCache(rdb, cfg.BookCacheTTL),
		Purchases:     purchaseService,
		History:       profileService,
		Artwork:       artwork,
		ArtworkURLTTL: cfg.ArtworkURLTTL,
		Logger:        log,
	})

	authorService := author.NewService(author.NewPostgresRepository(pool), authService, bookService, log)
	forumService := forum.NewService(forum.NewPostgresRepository(pool), log)

	// ── 8. Maintenance Jobs ───────────────────────────────────────────────
	jobs := scheduler.New(log, constants.MaintenanceJobTimeout)
	must(log, jobs.Register("session_purge", cfg.SessionPurgeSchedule, func(ctx context.Context) error {
		_, err := authService.PurgeExpiredSessions(ctx)
		return err
	}), "register session purge job")
	must(log, jobs.Register("rating_repair", cfg.RatingRepairSchedule, func(ctx context.Context) error {
		_, err := bookService.RepairRatings(ctx)
		return err
	}), "register rating repair job")
	jobs.Start()

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, !cfg.IsDevelopment()),
		Book:      book.NewHandler(bookService),
		Author:    author.NewHandler(authorService),
		Profile:   profile.NewHandler(profileService),
		Purchase:  purchase.NewHandler(purchaseService),
		Forum:     forum.NewHandler(forumService),
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := jobs.Stop(stopCtx); err != nil {
		log.Warn("scheduler stop timed out", slog.Any("error", err))
	}

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only startup wiring uses it. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
