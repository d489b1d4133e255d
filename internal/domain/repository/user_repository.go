package repository

import (
	"context"

	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateRefreshToken replaces the stored refresh credential; nil clears it.
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error
	// ConfirmEmail flips confirmed=true for the matching user.
	ConfirmEmail(ctx context.Context, email string) error
	// UpdateAvatar sets the avatar URL (nil clears it) and returns the
	// refreshed record.
	UpdateAvatar(ctx context.Context, email string, url *string) (*entity.User, error)
}
