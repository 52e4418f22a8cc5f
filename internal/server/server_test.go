package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/handlers"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/repository"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

const testUserID = "5f0c1c8e-8d4c-4b59-9c1b-7f3f2f1a0001"

// stubUserService answers every call with the fixed test user
type stubUserService struct {
	user *models.User
}

func (s *stubUserService) SignUp(context.Context, *models.UserSignup) (*models.AuthResponse, error) {
	return &models.AuthResponse{User: s.user, Token: "new-token"}, nil
}

func (s *stubUserService) Login(context.Context, *models.LoginRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{User: s.user, Token: "login-token"}, nil
}

func (s *stubUserService) Logout(context.Context, *auth.Principal) error    { return nil }
func (s *stubUserService) LogoutAll(context.Context, *auth.Principal) error { return nil }

func (s *stubUserService) List(context.Context) ([]*models.User, error) {
	return []*models.User{s.user}, nil
}

func (s *stubUserService) GetByID(_ context.Context, id string) (*models.User, error) {
	if id != s.user.ID {
		return nil, utils.NewNotFoundError("User", id)
	}
	return s.user, nil
}

func (s *stubUserService) UpdateProfile(context.Context, string, map[string]json.RawMessage) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserService) DeleteAccount(context.Context, *auth.Principal) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserService) UploadAvatar(context.Context, string, string, int64, io.Reader) error {
	return nil
}

func (s *stubUserService) DeleteAvatar(context.Context, string) error { return nil }

func (s *stubUserService) OpenAvatar(_ context.Context, userID string) (io.ReadCloser, string, error) {
	return nil, "", utils.NewNotFoundError("Avatar", userID)
}

// stubTaskService records the owner of the last call
type stubTaskService struct {
	mu        sync.Mutex
	lastOwner string
}

func (s *stubTaskService) record(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOwner = ownerID
}

func (s *stubTaskService) Create(_ context.Context, ownerID string, req *models.TaskCreate) (*models.Task, error) {
	s.record(ownerID)
	return &models.Task{ID: "t1", Description: req.Description, OwnerID: ownerID}, nil
}

func (s *stubTaskService) Get(_ context.Context, ownerID, taskID string) (*models.Task, error) {
	s.record(ownerID)
	return nil, utils.NewNotFoundError("Task", taskID)
}

func (s *stubTaskService) Update(_ context.Context, ownerID, taskID string, _ map[string]json.RawMessage) (*models.Task, error) {
	s.record(ownerID)
	return &models.Task{ID: taskID, OwnerID: ownerID}, nil
}

func (s *stubTaskService) Delete(_ context.Context, ownerID, taskID string) (*models.Task, error) {
	s.record(ownerID)
	return &models.Task{ID: taskID, OwnerID: ownerID}, nil
}

func (s *stubTaskService) List(_ context.Context, ownerID string, q models.TaskQuery) (*models.TaskPage, error) {
	s.record(ownerID)
	return &models.TaskPage{Tasks: []*models.Task{}, Page: q.Page, TotalPages: 0}, nil
}

type stubDocumentService struct{}

func (stubDocumentService) Upload(context.Context, string, string, int64, io.Reader) (string, error) {
	return "documents/a.pdf", nil
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

// fakeUsers loads users for the gate
type fakeUsers map[string]*models.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f[id]; ok {
		return user, nil
	}
	return nil, utils.NewNotFoundError("User", id)
}

// fakeTokenSet holds the live tokens for the gate
type fakeTokenSet map[string]bool

func (f fakeTokenSet) Exists(_ context.Context, _ string, token string) (bool, error) {
	return f[token], nil
}

// testEnv is a server wired to stub services with a real token authority
type testEnv struct {
	server  *Server
	tasks   *stubTaskService
	token   string
	revoked string
}

// Create a simplified test config
func createTestConfig() *config.AppConfig {
	return &config.AppConfig{
		App: config.AppSettings{
			Environment: "testing",
			Name:        "taskmanager-test",
			Version:     "test-version",
		},
		Server: config.ServerSettings{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
		},
		JWT: config.JWTSettings{
			Secret: "test-secret",
			Expiry: time.Hour,
		},
		CORS: config.CORSSettings{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		RateLimit: config.RateLimitSettings{
			LoginRate:  0.01,
			LoginBurst: 2,
		},
	}
}

func newTestEnv(t *testing.T, health fakeHealth) *testEnv {
	t.Helper()

	cfg := createTestConfig()
	authority := auth.NewTokenAuthorityFromConfig(&cfg.JWT)
	user := &models.User{ID: testUserID, Name: "Ann", Email: "ann@example.com"}

	token, _, err := authority.Issue(user.ID)
	require.NoError(t, err)
	revoked, _, err := authority.Issue(user.ID)
	require.NoError(t, err)

	tasks := &stubTaskService{}
	s := &Server{
		Config: cfg,
		Handlers: &Handlers{
			UserHandler:     handlers.NewUserHandler(&stubUserService{user: user}),
			TaskHandler:     handlers.NewTaskHandler(tasks),
			DocumentHandler: handlers.NewDocumentHandler(stubDocumentService{}),
			HealthHandler:   handlers.NewHealthHandler(health, cfg.App.Version),
		},
		authProviders: &AuthProviders{
			TokenAuthority: authority,
			Gate: auth.NewGate(
				authority,
				fakeUsers{user.ID: user},
				fakeTokenSet{token: true},
			),
		},
		rateStore: newRateStore(&cfg.RateLimit),
	}
	s.SetupRoutes()

	return &testEnv{server: s, tasks: tasks, token: token, revoked: revoked}
}

func (e *testEnv) do(method, target, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerTokenPrefix+token)
	}
	rr := httptest.NewRecorder()
	e.server.GetRouter().ServeHTTP(rr, req)
	return rr
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t, fakeHealth{})

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		token          string
		expectedStatus int
		emptyBody      bool
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Signup", method: http.MethodPost, path: "/users", body: `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, expectedStatus: http.StatusCreated},
		{name: "Login", method: http.MethodPost, path: "/users/login", body: `{"email":"ann@example.com","password":"secret123"}`, expectedStatus: http.StatusOK},
		{name: "Public profile", method: http.MethodGet, path: "/users/" + testUserID, expectedStatus: http.StatusOK},
		{name: "Unknown profile", method: http.MethodGet, path: "/users/nobody", expectedStatus: http.StatusNotFound},
		{name: "Missing avatar", method: http.MethodGet, path: "/users/" + testUserID + "/avatar", expectedStatus: http.StatusNotFound},
		{name: "Profile without token", method: http.MethodGet, path: "/users/me", expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "Profile with token", method: http.MethodGet, path: "/users/me", token: env.token, expectedStatus: http.StatusOK},
		{name: "Profile with revoked token", method: http.MethodGet, path: "/users/me", token: env.revoked, expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "Profile with garbage token", method: http.MethodGet, path: "/users/me", token: "not-a-jwt", expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "User list requires token", method: http.MethodGet, path: "/users", expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "User list", method: http.MethodGet, path: "/users", token: env.token, expectedStatus: http.StatusOK},
		{name: "Logout", method: http.MethodPost, path: "/users/logout", token: env.token, expectedStatus: http.StatusOK},
		{name: "Logout all", method: http.MethodPost, path: "/users/logoutAll", token: env.token, expectedStatus: http.StatusOK},
		{name: "Update profile", method: http.MethodPatch, path: "/users/me", body: `{"name":"Bea"}`, token: env.token, expectedStatus: http.StatusOK},
		{name: "Delete account", method: http.MethodDelete, path: "/users/me", token: env.token, expectedStatus: http.StatusOK},
		{name: "Delete avatar", method: http.MethodDelete, path: "/users/me/avatar", token: env.token, expectedStatus: http.StatusOK},
		{name: "Tasks without token", method: http.MethodGet, path: "/tasks", expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "List tasks", method: http.MethodGet, path: "/tasks?limit=5&page=1", token: env.token, expectedStatus: http.StatusOK},
		{name: "Create task", method: http.MethodPost, path: "/tasks", body: `{"description":"Write tests"}`, token: env.token, expectedStatus: http.StatusCreated},
		{name: "Foreign task", method: http.MethodGet, path: "/tasks/t9", token: env.token, expectedStatus: http.StatusNotFound},
		{name: "Update task", method: http.MethodPatch, path: "/tasks/t1", body: `{"completed":true}`, token: env.token, expectedStatus: http.StatusOK},
		{name: "Delete task", method: http.MethodDelete, path: "/tasks/t1", token: env.token, expectedStatus: http.StatusOK},
		{name: "Upload without token", method: http.MethodPost, path: "/upload", expectedStatus: http.StatusUnauthorized, emptyBody: true},
		{name: "Unknown route", method: http.MethodGet, path: "/nowhere", expectedStatus: http.StatusNotFound},
		{name: "Wrong method", method: http.MethodPut, path: "/tasks/t1", token: env.token, expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(tt.method, tt.path, tt.body, tt.token)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.emptyBody {
				assert.Empty(t, rr.Body.String())
			}
		})
	}

	assert.Equal(t, testUserID, env.tasks.lastOwner)
}

func TestRoutes_ErrorBody(t *testing.T) {
	env := newTestEnv(t, fakeHealth{})

	rr := env.do(http.MethodGet, "/nowhere", "", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	var body utils.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, constants.MsgResourceNotFound, body.Error)
	assert.NotEmpty(t, body.Code)
}

func TestRoutes_HealthUnavailable(t *testing.T) {
	env := newTestEnv(t, fakeHealth{err: errors.New("connection refused")})

	rr := env.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "disconnected")
}

func TestRoutes_Middleware(t *testing.T) {
	env := newTestEnv(t, fakeHealth{})

	t.Run("Security headers", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/health", "", "")
		assert.Equal(t, constants.ContentTypeOptionsNoSniff, rr.Header().Get(constants.HeaderXContentTypeOptions))
		assert.Equal(t, constants.FrameOptionsDeny, rr.Header().Get(constants.HeaderXFrameOptions))
	})

	t.Run("No cache on API routes", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/tasks", "", env.token)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-cache")
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rr := httptest.NewRecorder()
		env.server.GetRouter().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRoutes_LoginRateLimit(t *testing.T) {
	env := newTestEnv(t, fakeHealth{})
	body := `{"email":"ann@example.com","password":"secret123"}`

	for i := 0; i < 2; i++ {
		rr := env.do(http.MethodPost, "/users/login", body, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := env.do(http.MethodPost, "/users/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(constants.HeaderRetryAfter))

	// Other routes are not limited
	assert.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@example.com","password":"secret123"}`, "").Code)
}

func TestRouteList(t *testing.T) {
	env := newTestEnv(t, fakeHealth{})

	routes, err := env.server.RouteList()

	require.NoError(t, err)
	assert.Contains(t, routes, "GET /health")
	assert.Contains(t, routes, "POST /users/login")
	assert.Contains(t, routes, "PATCH /tasks/{id}")
	assert.Contains(t, routes, "POST /upload")
	assert.IsIncreasing(t, routes)
}

func TestNewRateStore(t *testing.T) {
	store := newRateStore(&config.RateLimitSettings{LoginRate: 0.01, LoginBurst: 1})

	limiter := store.GetLimiter("10.0.0.1", constants.RateLimitCategoryLogin)
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
	assert.True(t, store.GetLimiter("10.0.0.2", constants.RateLimitCategoryLogin).Allow())
}

func newMockPool(t *testing.T) (*database.Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return database.NewPool(db), mock
}

func TestRunMaintenance(t *testing.T) {
	pool, mock := newMockPool(t)
	authority := auth.NewTokenAuthority("test-secret", time.Hour, "")

	s := &Server{
		Config:        createTestConfig(),
		Db:            pool,
		repos:         &repositories{tokenRepo: repository.NewTokenRepository(pool)},
		authProviders: &AuthProviders{TokenAuthority: authority},
	}

	mock.ExpectExec("DELETE FROM user_tokens WHERE created_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	s.runMaintenance(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetupMaintenanceTasksAndShutdown(t *testing.T) {
	pool, mock := newMockPool(t)

	s := &Server{
		Config:    createTestConfig(),
		Db:        pool,
		rateStore: newRateStore(&config.RateLimitSettings{LoginRate: 1, LoginBurst: 1}),
	}

	s.SetupMaintenanceTasks()
	require.NotNil(t, s.stopMaintenance)

	// Restarting replaces the running tasks
	s.SetupMaintenanceTasks()
	require.NotNil(t, s.stopMaintenance)

	mock.ExpectClose()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Shutdown(ctx))
	assert.Nil(t, s.stopMaintenance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
