// Package main is the entry point for the dev-bastion API server.
// Its job is small: set up logging, load configuration, and start the
// server. All wiring lives in internal/server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SimasDei/dev-bastion/internal/config"
	"github.com/SimasDei/dev-bastion/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		// Refuse to start rather than run an API whose tokens anyone could
		// forge. Generate one with: openssl rand -hex 32
		logger.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
