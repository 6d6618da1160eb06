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

	"github.com/msomdec/task-tracker/internal/config"
	"github.com/msomdec/task-tracker/internal/handler"
	"github.com/msomdec/task-tracker/internal/healthcheck"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
	"github.com/msomdec/task-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
	slog.Debug("configuration loaded", "config", cfg.String())

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, cfg.Auth.BcryptCost, cfg.Auth.TokenTTL)
	userService := service.NewUserService(db.Users())
	taskService := service.NewTaskService(db.Tasks(), db.Users())

	// Seed the administrator account (idempotent).
	if cfg.Admin.Enabled() {
		if _, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			slog.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
		slog.Info("admin account ready", "email", cfg.Admin.Email)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := handler.Options{
		Cookie: handler.CookieConfig{
			MaxAge: cfg.Auth.CookieMaxAge,
			Secure: cfg.Auth.CookieSecure,
		},
	}
	if cfg.Auth.RateLimitBurst > 0 {
		opts.AuthLimiter = service.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst)
		go opts.AuthLimiter.Run(ctx)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, userService, taskService, db, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	var stopHealth func(context.Context) error
	if cfg.HTTP.GRPCHealthAddr != "" {
		stopHealth, err = healthcheck.Start(ctx, cfg.HTTP.GRPCHealthAddr, db, healthcheck.DefaultInterval)
		if err != nil {
			slog.Error("failed to start grpc health server", "error", err)
			os.Exit(1)
		}
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if stopHealth != nil {
		if err := stopHealth(shutdownCtx); err != nil {
			slog.Error("grpc health shutdown error", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
