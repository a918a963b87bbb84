package repository

import (
	"context"

	"github.com/splax/passport/internal/domain"
)

// UserRepository persists users. The identity authority reads by email
// during login; the relying service reads its own projection by id.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}
