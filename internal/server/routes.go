package server

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/handlers"
	"github.com/yasinhessnawi1/taskmanager/internal/middleware"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
//   - The health check (unprotected)
//   - User accounts, sessions and avatars under /users
//   - The task collection of the caller under /tasks
//   - Document uploads under /upload
//
// Route protection is handled through the authorization gate on each
// protected group. Login is rate limited per client IP.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	// CORS runs first so preflight requests are answered before anything else
	r.Use(middleware.CORS(s.Config.CORS))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery())
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger())
	}
	r.Use(middleware.SecurityHeaders())

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get(constants.HealthPath, s.Handlers.HealthHandler.Health)

	// API routes
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.NoCache)

		r.Route(constants.UsersBasePath, s.userRoutes)
		r.Route(constants.TasksBasePath, s.taskRoutes)

		r.With(s.authProviders.Gate.RequireAuth).
			Post(constants.UploadPath, s.Handlers.DocumentHandler.UploadDocument)
	})

	s.router = r
}

// userRoutes registers the account endpoints.
// Signup, login and the public profile reads need no token.
func (s *Server) userRoutes(r chi.Router) {
	h := s.Handlers.UserHandler

	r.Post("/", h.SignUp)
	r.With(middleware.RateLimit(s.rateStore, constants.RateLimitCategoryLogin)).
		Post(constants.UserLoginPath, h.Login)
	r.Get(constants.UserByIDPath, h.GetUserByID)
	r.Get(constants.UserAvatarByID, h.GetAvatar)

	// Protected user endpoints
	r.Group(func(r chi.Router) {
		r.Use(s.authProviders.Gate.RequireAuth)

		r.Post(constants.UserLogoutPath, h.Logout)
		r.Post(constants.UserLogoutAllPath, h.LogoutAll)
		r.Get("/", h.ListUsers)

		r.Get(constants.UserProfilePath, h.GetCurrentUser)
		r.Patch(constants.UserProfilePath, h.UpdateProfile)
		r.Delete(constants.UserProfilePath, h.DeleteAccount)

		r.Post(constants.UserAvatarPath, h.UploadAvatar)
		r.Delete(constants.UserAvatarPath, h.DeleteAvatar)
	})
}

// taskRoutes registers the task endpoints, all of them protected
func (s *Server) taskRoutes(r chi.Router) {
	h := s.Handlers.TaskHandler

	r.Use(s.authProviders.Gate.RequireAuth)

	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get(constants.TaskByIDPath, h.GetTask)
	r.Patch(constants.TaskByIDPath, h.UpdateTask)
	r.Delete(constants.TaskByIDPath, h.DeleteTask)
}

// GetRouter returns the configured router.
//
// Returns:
//   - The chi.Router implementation used by the server
//
// This method is primarily used for testing and for
// integrating the router with other components.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// RouteList returns every registered route as "METHOD /pattern", sorted.
func (s *Server) RouteList() ([]string, error) {
	var routes []string
	err := chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(routes)
	return routes, nil
}

// logRoutes writes the route table at debug level
func (s *Server) logRoutes() {
	routes, err := s.RouteList()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to walk routes")
		return
	}
	log.Debug().
		Int("count", len(routes)).
		Strs("routes", routes).
		Msg("Routes registered")
}
