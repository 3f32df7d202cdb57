package domain

import (
	"context"

	"github.com/google/uuid"
)

// ContactRepository defines the interface for managing Contact data.
type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Contact, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Contact, error)
	// FindByNumberTail returns contacts whose phone number matches the given
	// trailing-digits key, oldest first.
	FindByNumberTail(ctx context.Context, tail string) ([]*Contact, error)
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
