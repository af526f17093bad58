package app

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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"lakeboard/internal/api"
	"lakeboard/internal/config"
	"lakeboard/internal/db"
	"lakeboard/internal/middleware"
)

// RunServer opens the database, runs migrations, wires the application, and
// serves HTTP until ctx is cancelled or a termination signal arrives.
func RunServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := db.OpenSQLitePair(cfg.DBPath, 8)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := db.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	a, err := New(Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		return err
	}
	if !cfg.IsProduction() {
		if err := a.SeedDemo(ctx); err != nil {
			return fmt.Errorf("seed demo workspace: %w", err)
		}
	}

	a.StartJobs()
	defer a.StopJobs()

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	handler := api.NewHandler(a.Workspace, logger.With("component", "api"))
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth([]byte(cfg.JWTSecret)))
		handler.Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
