package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nepalkings/kings-server/internal/repository"
)

// ErrInvalidCredentials is returned when authentication fails; it does
// not distinguish unknown users from wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameTaken is returned when the username is already registered.
var ErrUsernameTaken = errors.New("username already taken")

// Repository is the persistence the manager needs.
type Repository interface {
	Create(ctx context.Context, user *repository.User) error
	GetByUsername(ctx context.Context, username string) (*repository.User, error)
}

// Manager registers and authenticates accounts.
type Manager struct {
	repo   Repository
	logger *zap.Logger
}

// NewManager creates the user manager.
func NewManager(repo Repository, logger *zap.Logger) *Manager {
	return &Manager{repo: repo, logger: logger}
}

// Register creates a new account with a bcrypt password hash.
func (m *Manager) Register(ctx context.Context, username, password string) (*repository.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if _, err := m.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &repository.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := m.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("user registered", zap.String("username", username))
	}
	return user, nil
}

// Authenticate verifies a username/password pair.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*repository.User, error) {
	user, err := m.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 24 {
		return fmt.Errorf("username must be between 3 and 24 characters")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("username may only contain letters, digits, '_' and '-'")
		}
	}
	return nil
}

// MemoryRepository is an in-memory Repository for tests and for
// deployments without a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*repository.User
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*repository.User)}
}

// Create stores a user keyed by username.
func (r *MemoryRepository) Create(_ context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return ErrUsernameTaken
	}
	cp := *user
	r.users[user.Username] = &cp
	return nil
}

// GetByUsername fetches a stored user.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}
