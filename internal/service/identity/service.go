package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/splax/passport/internal/repository"
	apiclient "github.com/splax/passport/pkg/api/client"
)

// Service errors, mapped to HTTP statuses by the router.
var (
	ErrMissingToken = errors.New("identity: missing token")
	ErrUnauthorized = errors.New("identity: invalid token")
	ErrUpstream     = errors.New("identity: authority unavailable")
)

// Verifier delegates token verification to the identity authority.
type Verifier interface {
	Verify(ctx context.Context, authHeader string) (apiclient.Identity, error)
}

// Profile is the relying service's view of an authenticated caller,
// assembled from its own user projection.
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Service resolves the caller's identity by delegating verification to the
// authority and reading the local user projection. It holds no signing
// secret and performs no signature check of its own; the authority's answer
// is trusted unconditionally.
type Service struct {
	users    repository.UserRepository
	verifier Verifier
	logger   *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, verifier Verifier, logger *slog.Logger) Service {
	return Service{users: users, verifier: verifier, logger: logger}
}

// WhoAmI verifies the caller's Authorization header through the authority
// and returns the matching local user record. An absent header fails
// before any upstream call is made.
func (s Service) WhoAmI(ctx context.Context, authHeader string) (Profile, error) {
	if strings.TrimSpace(authHeader) == "" {
		return Profile{}, ErrMissingToken
	}
	id, err := s.verifier.Verify(ctx, authHeader)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return Profile{}, ErrUnauthorized
		}
		s.logger.Error("verify call failed", "error", err)
		return Profile{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	user, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return Profile{}, fmt.Errorf("lookup user %d: %w", id.UserID, err)
	}
	return Profile{ID: user.ID, Email: user.Email}, nil
}
