// Package main is the entry point for the JoliDay API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/joliday/backend/internal/auth"
	"github.com/joliday/backend/internal/calendar"
	"github.com/joliday/backend/internal/config"
	"github.com/joliday/backend/internal/email"
	"github.com/joliday/backend/internal/handler"
	"github.com/joliday/backend/internal/middleware"
	"github.com/joliday/backend/internal/obs"
	"github.com/joliday/backend/internal/realtime"
	"github.com/joliday/backend/internal/repo"
	"github.com/joliday/backend/internal/seed"
	"github.com/joliday/backend/internal/service"
	"github.com/joliday/backend/migrations"
)

type options struct {
	envFiles []string
	migrate  bool
	seedDemo bool
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("api", pflag.ExitOnError)
	flags.StringArrayVar(&opts.envFiles, "env-file", nil, "load variables from this .env file (repeatable)")
	flags.BoolVar(&opts.migrate, "migrate", true, "apply database migrations before serving")
	flags.BoolVar(&opts.seedDemo, "seed-demo", false, "insert demo users and a trip when the store has no users")
	_ = flags.Parse(os.Args[1:])

	if err := run(opts); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Tracing ----------------------------------------------------------
	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("tracer shutdown", "error", err)
		}
	}()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if opts.migrate {
		if err := migrate(ctx, pool); err != nil {
			return err
		}
	}

	users := repo.NewUserRepo(pool)
	trips := repo.NewTripRepo(pool)
	activities := repo.NewActivityRepo(pool)
	invites := repo.NewInviteRepo(pool)
	messages := repo.NewMessageRepo(pool)

	// --- Startup tasks ----------------------------------------------------
	if err := seed.EnsureRoles(ctx, users); err != nil {
		return err
	}
	if opts.seedDemo {
		created, err := seed.Demo(ctx, seed.Repos{Users: users, Trips: trips, Invites: invites}, time.Now())
		if err != nil {
			return err
		}
		slog.Info("demo data", "inserted", created)
	}

	// --- Collaborators ----------------------------------------------------
	publisher, err := realtime.New(ctx, realtime.Config{
		Backend:  cfg.RealtimeBackend,
		RedisURL: cfg.RedisURL,
		AMQPURL:  cfg.AMQPURL,
		Exchange: cfg.AMQPExchange,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("realtime publisher close", "error", err)
		}
	}()

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
	}

	tokens := auth.NewIssuer(auth.IssuerConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ExpiresIn: cfg.JWTExpiresIn,
	})

	// A nil verifier disables Google sign-in.
	var verifier service.IdentityVerifier
	if cfg.GoogleClientID != "" {
		keys, err := auth.NewGoogleKeyfunc(ctx, cfg.GoogleJWKSURL)
		if err != nil {
			return err
		}
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID, keys)
	}

	// --- Router -----------------------------------------------------------
	// RequestID generates a unique ID per request; RealIP trusts proxy headers.
	// Tracing wraps everything below it so the logged request shares the span.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	server := handler.NewServer(handler.Deps{
		Trips:              service.NewTripService(trips, time.Now),
		Activities:         service.NewActivityService(trips, activities, calendar.NewSerializer()),
		Invites:            service.NewInviteService(trips, users, invites),
		Messages:           service.NewMessageService(trips, messages, publisher, logger),
		Users:              service.NewUserService(users, verifier, tokens),
		Contact:            service.NewContactService(sender, cfg.ContactRecipients),
		Tokens:             tokens,
		Logger:             logger,
		UserStreamInterval: cfg.UserStreamInterval,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTracing(otel.GetTracerProvider(), otel.GetTextMapPropagator()))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// The user count stream clears its own write deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// Give in-flight requests up to 15 seconds, then drop what is left
	// (long-lived event streams).
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown incomplete", "error", err)
		_ = srv.Close()
	}
	slog.Info("server stopped")
	return nil
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
