package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/planetmint/planetmint-driver-go/internal/config"
	"github.com/planetmint/planetmint-driver-go/internal/server/handlers"
	"github.com/planetmint/planetmint-driver-go/internal/server/middleware"
	"github.com/planetmint/planetmint-driver-go/internal/txstore"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

const apiPrefix = "/api/v1"

type Server struct {
	store  *txstore.Store
	config *config.NodeEnvironment
	logger *slog.Logger
	router *chi.Mux
}

func NewServer(store *txstore.Store, cfg *config.NodeEnvironment, logger *slog.Logger) *Server {
	server := &Server{
		store:  store,
		config: cfg,
		logger: logger,
		router: chi.NewRouter(),
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(chimiddleware.Timeout(s.config.RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestSize))
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HandleHealth)
	s.router.Get("/ready", handlers.HandleReadiness(s.store.Ping))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))

	s.router.Get("/", s.handleNodeInfo)
	s.router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/", s.handleAPIInfo)
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleSubmitTransaction)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Get("/outputs", s.handleListOutputs)
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("sandbox node listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr),
			slog.String("store", s.config.StoreDir))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
