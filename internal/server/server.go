// Package server wires the dependency graph and defines the route table.
// main creates the DB and config; everything else (repositories, services,
// handlers, middleware) is assembled here in one place.
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

	"github.com/SimasDei/dev-bastion/internal/auth"
	"github.com/SimasDei/dev-bastion/internal/config"
	"github.com/SimasDei/dev-bastion/internal/github"
	"github.com/SimasDei/dev-bastion/internal/handler"
	"github.com/SimasDei/dev-bastion/internal/middleware"
	sqliteRepo "github.com/SimasDei/dev-bastion/internal/repository/sqlite"
	"github.com/SimasDei/dev-bastion/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: store, services, handlers,
// routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var ghProvider *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		ghProvider = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}
	ghClient := github.NewClient(s.config.GitHubClientID, s.config.GitHubClientSecret, s.logger)

	authService := service.NewAuthService(s.db.Users, tokens, passwords, s.logger)
	profileService := service.NewProfileService(s.db.Profiles, ghClient, s.logger)
	postService := service.NewPostService(s.db.Posts, s.db.Users, s.logger)

	authHandler := handler.NewAuthHandler(authService, ghProvider, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.HandleRegister)
		r.Post("/auth", authHandler.HandleLogin)
		r.With(requireAuth).Get("/auth", authHandler.HandleCurrentUser)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/all", profileHandler.HandleList)
			r.Get("/user/{id}", profileHandler.HandleGetByUserID)
			r.Get("/github/{username}", profileHandler.HandleGitHubRepos)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", profileHandler.HandleGetMine)
				r.Post("/", profileHandler.HandleUpsert)
				r.Delete("/", profileHandler.HandleDeleteAccount)
				r.Put("/experience", profileHandler.HandleAddExperience)
				r.Delete("/experience/{id}", profileHandler.HandleRemoveExperience)
				r.Put("/education", profileHandler.HandleAddEducation)
				r.Delete("/education/{id}", profileHandler.HandleRemoveEducation)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.HandleList)
			r.Get("/{id}", postHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", postHandler.HandleCreate)
				r.Delete("/{id}", postHandler.HandleDelete)
				r.Put("/like/{id}", postHandler.HandleLike)
				r.Put("/unlike/{id}", postHandler.HandleUnlike)
				r.Post("/comment/{id}", postHandler.HandleAddComment)
				r.Delete("/comment/{id}/{commentID}", postHandler.HandleRemoveComment)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
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
