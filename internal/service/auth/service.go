package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/splax/passport/internal/domain"
	"github.com/splax/passport/internal/repository"
	"github.com/splax/passport/pkg/config"
	"github.com/splax/passport/pkg/token"
)

// Service errors, mapped to HTTP statuses by the router.
var (
	ErrMissingFields = errors.New("auth: email and password are required")
	// ErrInvalidCredentials covers both unknown users and wrong passwords
	// so responses never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: user already exists")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenInvalid       = errors.New("auth: token invalid")
)

// Service implements the identity authority operations.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.AuthConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.AuthConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Login checks credentials and issues a signed token embedding the user's
// identity. The password check is an exact match against the stored value.
func (s Service) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", ErrMissingFields
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user.Password != password {
		return "", ErrInvalidCredentials
	}
	signed, err := token.Issue(user.ID, user.Email, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return signed, nil
}

// Register creates a new account. A duplicate insert racing past the
// existence check surfaces as the store's uniqueness violation and maps to
// the same conflict outcome.
func (s Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingFields
	}
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	user := &domain.User{Email: email, Password: password}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Verify validates a token's signature and expiry and echoes the embedded
// claims. No store access: validity is a function of the token, the secret
// and the clock.
func (s Service) Verify(raw string) (*token.Claims, error) {
	claims, err := token.Parse(raw, s.cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
