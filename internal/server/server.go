// Package server provides the HTTP server of the task manager API.
// It handles routing, middleware configuration, and server lifecycle management.
//
// Components are built in dependency order by NewServer and held on the
// Server value. Start blocks until the process receives SIGINT or SIGTERM and
// then drains in-flight requests within the configured shutdown timeout.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/handlers"
	"github.com/yasinhessnawi1/taskmanager/internal/repository"
	"github.com/yasinhessnawi1/taskmanager/internal/service"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
	"github.com/yasinhessnawi1/taskmanager/internal/utils/ratelimit"
	"github.com/yasinhessnawi1/taskmanager/migrations"
	"github.com/yasinhessnawi1/taskmanager/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// UserHandler manages accounts, sessions and avatars
	UserHandler *handlers.UserHandler

	// TaskHandler manages the task collection of the caller
	TaskHandler *handlers.TaskHandler

	// DocumentHandler manages document uploads
	DocumentHandler *handlers.DocumentHandler

	// HealthHandler answers the liveness probe
	HealthHandler *handlers.HealthHandler
}

// AuthProviders contains all authentication providers for the application.
type AuthProviders struct {
	// TokenAuthority signs and verifies session tokens
	TokenAuthority *auth.TokenAuthority

	// Hasher hashes and verifies passwords
	Hasher *auth.PasswordHasher

	// Gate resolves bearer tokens into principals on protected routes
	Gate *auth.Gate
}

// repositories holds the data access layer used by the server.
type repositories struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	taskRepo  repository.TaskRepository
}

// services holds the business services used by the server.
type services struct {
	userService     *service.UserService
	taskService     *service.TaskService
	documentService *service.DocumentService
}

// Server represents the API server.
// It encapsulates all server components and handles server lifecycle management,
// including initialization, startup, and graceful shutdown.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// authProviders contains authentication services
	authProviders *AuthProviders

	repos    *repositories
	services *services

	// blobs stores avatars and documents
	blobs storage.BlobStorage

	// notifier sends the account lifecycle emails
	notifier service.EmailNotifier

	// rateStore holds the per-client login buckets
	rateStore *ratelimit.Store

	// httpServer is the underlying HTTP server
	httpServer *http.Server

	// stopMaintenance ends the background tasks started by SetupMaintenanceTasks
	stopMaintenance context.CancelFunc
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration including database, server, and auth settings
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
//
// Components are set up in this order: database, auth providers, storage,
// repositories, services, handlers, routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupComponents(); err != nil {
		s.Db.Close()
		return nil, err
	}

	return s, nil
}

// setupComponents builds everything that sits on top of the database pool.
func (s *Server) setupComponents() error {
	s.setupAuthProviders()

	if err := s.setupSeeds(); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	if err := s.setupStorage(); err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}

	s.setupRepositories()

	if err := s.setupServices(); err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}

	s.setupHandlers()
	s.setupRateLimiting()
	s.SetupRoutes()
	s.logRoutes()

	s.httpServer = &http.Server{
		Addr:         s.Config.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}

	return nil
}

// setupDatabase connects to the database and brings the schema up to date.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// setupSeeds inserts the demo account when database.seed_demo is set.
// Configuration validation keeps this off in production.
func (s *Server) setupSeeds() error {
	if !s.Config.Database.SeedDemo {
		return nil
	}

	seeder := scripts.NewSeeder(s.Db, s.authProviders.Hasher)
	return seeder.SeedDatabase(context.Background())
}

// setupAuthProviders creates the token authority, the password hasher and
// the gate. The gate needs the repositories, so it is attached in setupRepositories.
func (s *Server) setupAuthProviders() {
	s.authProviders = &AuthProviders{
		TokenAuthority: auth.NewTokenAuthorityFromConfig(&s.Config.JWT),
		Hasher:         auth.NewPasswordHasher(auth.ConfigFromSettings(&s.Config.PasswordHash)),
	}
}

// setupStorage creates the blob backend and the email notifier.
func (s *Server) setupStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.StorageTimeout)
	defer cancel()

	blobs, err := storage.New(ctx, &s.Config.Storage)
	if err != nil {
		return err
	}
	s.blobs = blobs

	notifier := service.NewSendGridNotifier(&s.Config.Email, &s.Config.App)
	if !notifier.Enabled() {
		log.Info().Msg("Email delivery disabled, notifications will only be logged")
	}
	s.notifier = notifier

	return nil
}

// setupRepositories initializes all data repositories and the gate that reads them.
func (s *Server) setupRepositories() {
	s.repos = &repositories{
		userRepo:  repository.NewUserRepository(s.Db),
		tokenRepo: repository.NewTokenRepository(s.Db),
		taskRepo:  repository.NewTaskRepository(s.Db),
	}

	s.authProviders.Gate = auth.NewGate(
		s.authProviders.TokenAuthority,
		s.repos.userRepo,
		s.repos.tokenRepo,
	)
}

// setupServices initializes all business services.
//
// Returns:
//   - An error if a required dependency is missing
func (s *Server) setupServices() error {
	if s.authProviders == nil || s.authProviders.TokenAuthority == nil {
		return fmt.Errorf("token authority not initialized")
	}
	if s.blobs == nil {
		return fmt.Errorf("blob storage not initialized")
	}

	s.services = &services{
		userService: service.NewUserService(
			s.repos.userRepo,
			s.repos.tokenRepo,
			s.repos.taskRepo,
			s.Db,
			s.authProviders.Hasher,
			s.authProviders.TokenAuthority,
			s.blobs,
			s.notifier,
		),
		taskService:     service.NewTaskService(s.repos.taskRepo),
		documentService: service.NewDocumentService(s.blobs),
	}

	return nil
}

// setupHandlers initializes all HTTP request handlers.
func (s *Server) setupHandlers() {
	s.Handlers = &Handlers{
		UserHandler:     handlers.NewUserHandler(s.services.userService),
		TaskHandler:     handlers.NewTaskHandler(s.services.taskService),
		DocumentHandler: handlers.NewDocumentHandler(s.services.documentService),
		HealthHandler:   handlers.NewHealthHandler(s.Db, s.Config.App.Version),
	}
}

// setupRateLimiting creates the limiter store with the login rate from config.
func (s *Server) setupRateLimiting() {
	s.rateStore = newRateStore(&s.Config.RateLimit)
}

// newRateStore builds a limiter store whose login category uses the configured rate
func newRateStore(cfg *config.RateLimitSettings) *ratelimit.Store {
	loginRate := ratelimit.Rate{
		RequestsPerSecond: cfg.LoginRate,
		Burst:             cfg.LoginBurst,
	}
	store := ratelimit.NewStore(loginRate, constants.RateLimitIdleTTL)
	store.SetRate(constants.RateLimitCategoryLogin, loginRate)
	return store
}

// Start starts the HTTP server and sets up signal handling for graceful shutdown.
// It runs in a blocking mode, waiting for either server errors or shutdown signals.
//
// Returns:
//   - An error if the server fails to start or encounters an error during operation
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		s.stopBackground()
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			// Shutdown the server immediately if graceful shutdown fails
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, closing all connections properly.
// It ensures in-flight requests are completed before shutting down.
//
// Parameters:
//   - ctx: Context with timeout for the shutdown operation
//
// Returns:
//   - An error if shutdown fails within the context timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackground()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info().Msg("Server stopped gracefully")
	}

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}

// stopBackground cancels the maintenance tasks if they are running
func (s *Server) stopBackground() {
	if s.stopMaintenance != nil {
		s.stopMaintenance()
		s.stopMaintenance = nil
	}
}

// SetupMaintenanceTasks starts the periodic background tasks of the server.
//
// These maintenance tasks include:
//  1. Deleting token rows whose session token has expired
//  2. Checking that the database still answers
//  3. Evicting idle rate limit buckets
//
// The tasks run until Shutdown is called. Calling it again restarts them.
func (s *Server) SetupMaintenanceTasks() {
	s.stopBackground()

	ctx, cancel := context.WithCancel(context.Background())
	s.stopMaintenance = cancel

	if s.rateStore != nil {
		s.rateStore.StartCleanup(ctx, constants.RateLimitCleanupInterval)
	}

	go func() {
		ticker := time.NewTicker(constants.DBMaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runMaintenance(ctx)
			}
		}
	}()
}

// runMaintenance performs one maintenance pass with its own timeout
func (s *Server) runMaintenance(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, constants.MaintenanceTimeout)
	defer cancel()

	start := time.Now()

	count, err := s.repos.tokenRepo.DeleteExpired(ctx, s.authProviders.TokenAuthority.Expiry())
	if err != nil {
		log.Error().Err(err).Msg("Failed to cleanup expired tokens")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("Cleaned up expired tokens")
	}

	if err := s.Db.HealthCheck(ctx); err != nil {
		log.Error().Err(err).Msg("Database health check failed during maintenance")
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Msg("Maintenance pass completed")
}
