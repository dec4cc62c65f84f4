package repository

import (
	"context"
	"time"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups that match nothing return an apperror NotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByResetToken returns the user whose hashed reset token matches and
	// whose reset deadline is after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
