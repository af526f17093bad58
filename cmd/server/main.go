package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"lakeboard/internal/app"
	"lakeboard/internal/config"
)

func main() {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := app.RunServer(context.Background(), cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
