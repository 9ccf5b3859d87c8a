// Package server wires the HTTP surface together: router, middleware,
// routes and graceful shutdown. It is the composition root for the REST
// transport: the database, normalizer, service and handlers are all
// assembled here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snipstore/internal/auth"
	"github.com/sakif/snipstore/internal/handler"
	"github.com/sakif/snipstore/internal/middleware"
	"github.com/sakif/snipstore/internal/normalize"
	sqliteRepo "github.com/sakif/snipstore/internal/repository/sqlite"
	"github.com/sakif/snipstore/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret and PasswordHash enable authentication when both are set.
	// Left empty, the API runs open, the default for a personal store
	// bound to localhost.
	JWTSecret    string
	PasswordHash string
}

// Server owns the router and the database handle; the handle is closed
// during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the dependency chain: sqlite gateway → normalizer →
// resource service → handlers → routes. Each layer receives only the
// interface it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	norm := normalize.New()
	resourceService := service.NewResourceService(s.db, norm, s.logger)
	resourceHandler := handler.NewResourceHandler(resourceService, s.logger)

	// Authentication is optional: without a configured secret every route
	// is open and the login route is not registered at all.
	var requireAuth func(http.Handler) http.Handler
	if s.config.JWTSecret != "" && s.config.PasswordHash != "" {
		tokens, err := auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		authHandler := handler.NewAuthHandler(tokens, auth.NewPasswordService(), s.config.PasswordHash, s.logger)
		s.router.Post("/api/auth/login", authHandler.HandleLogin)
		requireAuth = auth.RequireAuth(tokens)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/resources", resourceHandler.HandleSearch)
		r.Get("/resources/{digest}", resourceHandler.HandleGet)

		r.Group(func(r chi.Router) {
			if requireAuth != nil {
				r.Use(requireAuth)
			}
			r.Post("/resources", resourceHandler.HandleCreate)
			r.Put("/resources/{digest}", resourceHandler.HandleUpdate)
			r.Patch("/resources/{digest}", resourceHandler.HandleUpdate)
			r.Delete("/resources/{digest}", resourceHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, close the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.config.JWTSecret != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
