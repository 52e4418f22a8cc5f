package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// MockUserRepository keeps users in memory
type MockUserRepository struct {
	mu      sync.Mutex
	users   map[string]*models.User
	deleted []string
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return utils.NewValidationError(constants.ColumnEmail, constants.MsgEmailDuplicate)
		}
	}
	user.ID = uuid.NewString()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("User", "email")
}

func (m *MockUserRepository) List(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (m *MockUserRepository) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return utils.NewNotFoundError("User", user.ID)
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return utils.NewValidationError(constants.ColumnEmail, constants.MsgEmailDuplicate)
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) UpdateAvatar(_ context.Context, id string, avatar *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.Avatar = avatar
	return nil
}

func (m *MockUserRepository) DeleteTx(_ context.Context, _ database.Querier, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return utils.NewNotFoundError("User", id)
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, "user")
	return nil
}

// MockTokenRepository keeps token sets in memory
type MockTokenRepository struct {
	mu     sync.Mutex
	tokens map[string][]string
	addErr error
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{tokens: make(map[string][]string)}
}

func (m *MockTokenRepository) Add(_ context.Context, token *models.UserToken) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.UserID] = append(m.tokens[token.UserID], token.Token)
	return nil
}

func (m *MockTokenRepository) Exists(_ context.Context, userID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTokenRepository) Delete(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tokens[userID][:0]
	for _, t := range m.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	m.tokens[userID] = kept
	return nil
}

func (m *MockTokenRepository) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.tokens[userID]))
	delete(m.tokens, userID)
	return n, nil
}

func (m *MockTokenRepository) DeleteAllForUserTx(ctx context.Context, _ database.Querier, userID string) (int64, error) {
	return m.DeleteAllForUser(ctx, userID)
}

func (m *MockTokenRepository) DeleteExpired(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (m *MockTokenRepository) count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens[userID])
}

// MockTaskRepository is a testify mock of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateByOwner(ctx context.Context, ownerID, taskID string, update *models.TaskUpdate) (*models.Task, error) {
	args := m.Called(ctx, ownerID, taskID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) DeleteAllByOwnerTx(ctx context.Context, q database.Querier, ownerID string) (int64, error) {
	args := m.Called(ctx, q, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) CountByOwner(ctx context.Context, ownerID string, completed *bool) (int, error) {
	args := m.Called(ctx, ownerID, completed)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, ownerID string, completed *bool, sort *models.TaskSort, limit, offset int) ([]*models.Task, error) {
	args := m.Called(ctx, ownerID, completed, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

// mockTransactor runs fn without a real transaction, or fails when err is set
type mockTransactor struct {
	err   error
	calls int
}

func (m *mockTransactor) Transaction(_ context.Context, fn func(tx *sql.Tx) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(nil)
}

// mockBlobStorage keeps blobs in memory
type mockBlobStorage struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	storeErr error
	openErr  error
}

func newMockBlobStorage() *mockBlobStorage {
	return &mockBlobStorage{blobs: make(map[string][]byte)}
}

func (m *mockBlobStorage) Store(_ context.Context, data io.Reader, filename string, name storage.NamingPolicy) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	locator := name(utils.DottedExtension(filename))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[locator] = content
	return locator, nil
}

func (m *mockBlobStorage) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.blobs[locator]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *mockBlobStorage) Delete(_ context.Context, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, locator)
	return nil
}

func (m *mockBlobStorage) has(locator string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[locator]
	return ok
}

// recordingNotifier records every message it is asked to send
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendWelcome(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, "welcome:"+email)
	return nil
}

func (n *recordingNotifier) SendCancellation(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, "cancellation:"+email)
	return nil
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// counterIssuer issues predictable tokens
type counterIssuer struct {
	mu  sync.Mutex
	n   int
	err error
}

func (c *counterIssuer) Issue(userID string) (string, time.Time, error) {
	if c.err != nil {
		return "", time.Time{}, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("token-%s-%d", userID, c.n), time.Now().Add(time.Hour), nil
}

// fastHasher keeps argon2 cheap in tests
func fastHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(&auth.PasswordConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

var errStoreDown = errors.New("store down")
