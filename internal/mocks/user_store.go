package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Without function
// overrides it behaves like a small in-memory store keyed by username.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn         func(ctx context.Context, user *domain.User) error
	GetByUsernameFn  func(ctx context.Context, username string) (*domain.User, error)
	GetByIDFn        func(ctx context.Context, id int64) (*domain.User, error)
	UpdatePasswordFn func(ctx context.Context, id int64, password string) error

	// Data for default implementation
	Users              map[string]*domain.User
	LastUserID         int64
	CreateError        error
	GetByUsernameError error

	mu sync.Mutex
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// AddUser stores a copy of user without any password handling and returns
// the id it was given. Tests use it to seed the store.
func (m *MockUserStore) AddUser(username, hashedPassword string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastUserID++
	now := time.Now().UTC()
	user := &domain.User{
		ID:             m.LastUserID,
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.users()[username] = user
	return user
}

// Create implements the UserStore interface. The stored hash is the
// plaintext prefixed with "hashed:" so tests can check what was stored.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users()[user.Username]; exists {
		return store.ErrUsernameExists
	}

	m.LastUserID++
	user.ID = m.LastUserID
	user.HashedPassword = MockPasswordHashPrefix + user.Password
	user.Password = ""

	stored := *user
	m.users()[user.Username] = &stored
	return nil
}

// GetByUsername implements the UserStore interface
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	if m.GetByUsernameError != nil {
		return nil, m.GetByUsernameError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users()[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users() {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// UpdatePassword implements the UserStore interface
func (m *MockUserStore) UpdatePassword(ctx context.Context, id int64, password string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, id, password)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users() {
		if user.ID == id {
			user.HashedPassword = MockPasswordHashPrefix + password
			user.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return store.ErrUserNotFound
}

// WithTx implements the UserStore interface for transaction support
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	// For mock purposes, just return the same mock
	return m
}

func (m *MockUserStore) users() map[string]*domain.User {
	if m.Users == nil {
		m.Users = make(map[string]*domain.User)
	}
	return m.Users
}

// MockPasswordHashPrefix is prepended to plaintext passwords by MockUserStore.
const MockPasswordHashPrefix = "hashed:"
