// Package service implements the business logic between the HTTP handlers
// and the persistence layer.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/weatherdesk/weatherdesk-go/internal/crypto"
	"github.com/weatherdesk/weatherdesk-go/internal/model"
	"github.com/weatherdesk/weatherdesk-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already taken")
	ErrNoToken            = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
)

// CredentialStore is the persistence contract the auth service needs.
// *repository.UserRepository implements it.
type CredentialStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateToken(ctx context.Context, email, token string) error
}

// AuthService handles registration, login and request authentication.
type AuthService struct {
	store     CredentialStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account with the STANDARD role and returns a
// session token. The token is persisted as the user's current session.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if req.Email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	token, err := crypto.GenerateToken(req.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleStandard,
		Token:        token,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	slog.Info("user registered", "email", user.Email)

	return model.AuthResponse{
		Token: token,
		User:  model.Identity{Email: user.Email, Role: user.Role},
	}, nil
}

// Login authenticates a user by email and password. A successful login issues
// a fresh token and overwrites the stored current token, so any previously
// issued token stops authenticating. Unknown email and wrong password return
// the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.store.UpdateToken(ctx, user.Email, token); err != nil {
		return model.AuthResponse{}, err
	}

	slog.Info("user logged in", "email", user.Email)

	return model.AuthResponse{
		Token: token,
		User:  model.Identity{Email: user.Email, Role: user.Role},
	}, nil
}

// Authenticate resolves a presented bearer token to an identity. Beyond the
// signature and expiry checks it requires the token to match the user's
// stored current token byte-for-byte, which is what makes a later login
// invalidate earlier sessions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrNoToken
	}

	claims, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	user, err := s.store.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Identity{}, ErrInvalidToken
		}
		return model.Identity{}, err
	}

	if subtle.ConstantTimeCompare([]byte(user.Token), []byte(token)) != 1 {
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{Email: user.Email, Role: user.Role}, nil
}
