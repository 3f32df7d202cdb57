package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for managing User data.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// FindByMobileTail returns users whose personal mobile matches the given
	// trailing-digits key (see phonenumber.TailKey).
	FindByMobileTail(ctx context.Context, tail string) ([]*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	Update(ctx context.Context, u *User) error
	// DebitCredits atomically decrements the user's credit balance, failing
	// with ErrInsufficientCredits when the balance would go negative.
	DebitCredits(ctx context.Context, id uuid.UUID, amount int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
