package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
	"github.com/mfigueroa/fastfood-pos/internal/port"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

const sessionTTL = 12 * time.Hour

// AuthService authenticates users and manages the directory. Passwords
// are stored as bcrypt hashes only.
type AuthService struct {
	users    port.UserRepository
	sessions port.SessionStore
}

func NewAuthService(users port.UserRepository, sessions port.SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login verifies the credentials and opens a session, returning the user
// and the session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.SaveSession(ctx, token, user.ID, sessionTTL); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	return user, token, nil
}

// Authenticate resolves a session token back to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if userID == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Logout drops the session. A missing token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CreateUser registers a new operator. Only admins may create users.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.User, email, password, fullName string, role domain.Role) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ListUsers returns the directory. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
