// Package main is the entry point for the Wayfarer API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pkordes/wayfarer/internal/config"
	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/events"
	"github.com/pkordes/wayfarer/internal/handler"
	"github.com/pkordes/wayfarer/internal/jobs"
	"github.com/pkordes/wayfarer/internal/middleware"
	"github.com/pkordes/wayfarer/internal/notify"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
	"github.com/pkordes/wayfarer/internal/storage"
	"github.com/pkordes/wayfarer/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is a local-development convenience; its absence is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := repo.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectInterval)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("database connection established")

	sqlDB := stdlib.OpenDBFromPool(pool)
	if err := migrations.Up(ctx, sqlDB); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	_ = sqlDB.Close()

	// --- Repositories -----------------------------------------------------
	users := repo.NewUserRepo(pool)
	lists := repo.NewListRepo(pool)
	destinations := repo.NewDestinationRepo(pool)
	journal := repo.NewJournalRepo(pool)
	invitations := repo.NewInvitationRepo(pool)
	usage := repo.NewUsageCounter(pool)

	// --- Optional integrations --------------------------------------------
	var cleaner service.ImageCleaner
	if cfg.S3.Enabled() {
		c, err := storage.NewS3Cleaner(ctx, cfg.S3, logger)
		if err != nil {
			slog.Error("failed to configure image storage", "error", err)
			os.Exit(1)
		}
		cleaner = c
		slog.Info("image cleanup enabled", "bucket", cfg.S3.Bucket)
	}

	var notifier service.InvitationNotifier
	if cfg.Postmark.Enabled() {
		notifier = notify.NewMailer(cfg.Postmark, cfg.AppBaseURL)
		slog.Info("invitation e-mails enabled", "stream", cfg.Postmark.Stream)
	}

	// --- Services ---------------------------------------------------------
	opts := []service.Option{service.WithLogger(logger)}
	policy, err := service.NewEntitlementPolicy(domain.FreeLimits(), domain.PremiumLimits(), opts...)
	if err != nil {
		slog.Error("invalid entitlement policy", "error", err)
		os.Exit(1)
	}
	perms := service.NewPermissionResolver(lists, users)
	guard := service.NewLimitGuard(users, usage, policy)
	lifecycle := service.NewSubscriptionLifecycle(users, opts...)

	svc := handler.Services{
		Lists:        service.NewListService(lists, perms, guard, cleaner, opts...),
		Destinations: service.NewDestinationService(destinations, perms, guard, cleaner, opts...),
		Journal:      service.NewJournalService(journal, destinations, perms, guard, cleaner, opts...),
		Invitations: service.NewInvitationService(invitations, users, perms, guard, notifier,
			append(opts, service.WithInvitationTTL(cfg.InvitationTTL))...),
		Users:        service.NewUserService(users),
		Entitlements: guard,
	}

	// --- Payment events ---------------------------------------------------
	// Without a broker the webhook applies events inline.
	inline := events.NewInline(lifecycle)
	svc.Payments = inline
	if cfg.AMQP.Enabled() {
		broker, err := events.Dial(cfg.AMQP)
		if err != nil {
			slog.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer broker.Close()

		msgs, err := broker.Consume()
		if err != nil {
			slog.Error("failed to start payment event consumer", "error", err)
			os.Exit(1)
		}
		consumer := events.NewConsumer(lifecycle, logger)
		go func() {
			err := consumer.Serve(ctx, msgs)
			if errors.Is(err, context.Canceled) {
				return
			}
			// Events would pile up unapplied; shut down so the process is restarted.
			slog.Error("payment event consumer stopped", "error", err)
			stop()
		}()
		svc.Payments = broker.Publisher(inline, logger)
		slog.Info("payment events routed through broker", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}

	// --- Background jobs --------------------------------------------------
	var locker jobs.Locker
	if cfg.RedisURL != "" {
		client, err := jobs.ConnectRedis(ctx, cfg.RedisURL, cfg.DBConnectAttempts, cfg.DBConnectInterval)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		locker = jobs.NewRedisLocker(client)
	}
	scheduler := jobs.NewScheduler(lifecycle, locker, cfg.SweepLockTTL, logger)
	if err := scheduler.Start(cfg.SweepSchedule); err != nil {
		slog.Error("failed to schedule sweep", "error", err)
		os.Exit(1)
	}

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	var webhookAuth func(http.Handler) http.Handler
	if cfg.WebhookSecret != "" {
		webhookAuth = middleware.NewWebhookSecretHandler([]byte(cfg.WebhookSecret))
	} else {
		slog.Warn("WEBHOOK_SECRET not set; billing webhook disabled")
	}
	server := handler.NewServer(svc, logger)
	r.Mount("/", server.Routes(middleware.NewAuthHandler([]byte(cfg.JWTSecret)), webhookAuth))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		slog.Warn("sweep still running at shutdown")
	}
	slog.Info("server stopped")
}
