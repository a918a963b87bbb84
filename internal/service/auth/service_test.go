package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/splax/passport/internal/domain"
	"github.com/splax/passport/internal/repository"
	"github.com/splax/passport/pkg/config"
	"github.com/splax/passport/pkg/token"
)

type userRepoMock struct {
	createFunc     func(ctx context.Context, user *domain.User) error
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	getByIDFunc    func(ctx context.Context, id int64) (*domain.User, error)
}

func (m userRepoMock) CreateUser(ctx context.Context, user *domain.User) error {
	if m.createFunc == nil {
		return errors.New("unexpected CreateUser call")
	}
	return m.createFunc(ctx, user)
}

func (m userRepoMock) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc == nil {
		return nil, errors.New("unexpected GetUserByEmail call")
	}
	return m.getByEmailFunc(ctx, email)
}

func (m userRepoMock) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("unexpected GetUserByID call")
	}
	return m.getByIDFunc(ctx, id)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "service-test-secret", TokenTTL: time.Hour}
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			if email != "alice@example.com" {
				t.Fatalf("unexpected email lookup: %s", email)
			}
			return &domain.User{ID: 5, Email: email, Password: "secret"}, nil
		},
	}
	svc := New(users, newLogger(), testConfig())

	signed, err := svc.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := token.Parse(signed, testConfig().JWTSecret)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != 5 || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginUnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	unknown := userRepoMock{
		getByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	wrongPass := userRepoMock{
		getByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, Password: "right"}, nil
		},
	}
	svc := New(unknown, newLogger(), testConfig())
	_, errUnknown := svc.Login(context.Background(), "nouser@example.com", "anything")

	svc = New(wrongPass, newLogger(), testConfig())
	_, errWrong := svc.Login(context.Background(), "test@example.com", "wrongpass")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("errors differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	svc := New(userRepoMock{}, newLogger(), testConfig())
	for _, tc := range []struct{ email, password string }{
		{"", "secret"},
		{"alice@example.com", ""},
		{"", ""},
	} {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("(%q,%q): expected ErrMissingFields, got %v", tc.email, tc.password, err)
		}
	}
}

func TestLoginHidesStoreFailures(t *testing.T) {
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := New(users, newLogger(), testConfig())
	_, err := svc.Login(context.Background(), "alice@example.com", "secret")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("store failure must not map to credentials error, got %v", err)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, repository.ErrNotFound
		},
		createFunc: func(_ context.Context, user *domain.User) error {
			if user.Email != "alice@example.com" || user.Password != "secret" {
				t.Fatalf("unexpected user: %+v", user)
			}
			user.ID = 9
			return nil
		},
	}
	svc := New(users, newLogger(), testConfig())

	user, err := svc.Register(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 9 {
		t.Fatalf("expected assigned id, got %d", user.ID)
	}
	// Stored exactly as supplied.
	if user.Password != "secret" {
		t.Fatalf("password transformed: %q", user.Password)
	}
}

func TestRegisterConflictOnExistingEmail(t *testing.T) {
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, Password: "whatever"}, nil
		},
	}
	svc := New(users, newLogger(), testConfig())
	if _, err := svc.Register(context.Background(), "alice@example.com", "different"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterConflictOnInsertRace(t *testing.T) {
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, repository.ErrNotFound
		},
		createFunc: func(_ context.Context, _ *domain.User) error {
			return repository.ErrDuplicate
		},
	}
	svc := New(users, newLogger(), testConfig())
	if _, err := svc.Register(context.Background(), "alice@example.com", "secret"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for duplicate insert, got %v", err)
	}
}

func TestVerifyMapsTokenErrors(t *testing.T) {
	cfg := testConfig()
	svc := New(userRepoMock{}, newLogger(), cfg)

	valid, err := token.Issue(3, "carol@example.com", cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 3 || claims.Email != "carol@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	expired, err := token.Issue(3, "carol@example.com", cfg.JWTSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := svc.Verify("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	foreign, err := token.Issue(3, "carol@example.com", "another-secret", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(foreign); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}
