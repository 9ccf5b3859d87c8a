// Command server runs the snipstore REST API.
//
// Configuration comes from the environment: PORT (default 8080), DB_PATH
// (default data/snipstore.db), and optionally JWT_SECRET plus
// API_PASSWORD_HASH to enable authentication.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/snipstore/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/snipstore.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	passwordHash := os.Getenv("API_PASSWORD_HASH")
	if jwtSecret == "" || passwordHash == "" {
		logger.Warn("JWT_SECRET or API_PASSWORD_HASH not set, authentication is disabled")
	}

	cfg := server.Config{
		Port:         port,
		DBPath:       dbPath,
		JWTSecret:    jwtSecret,
		PasswordHash: passwordHash,
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
