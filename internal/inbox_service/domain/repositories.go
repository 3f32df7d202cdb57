package domain

import (
	"context"

	"github.com/google/uuid"
)

// InboxRepository defines the interface for stored inbound messages.
type InboxRepository interface {
	// Create inserts a new InboxMessage. Returns ErrDuplicateEntry when a
	// message with the same ID already exists.
	Create(ctx context.Context, msg *InboxMessage) error
	GetByID(ctx context.Context, id string, userID uuid.UUID) (*InboxMessage, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*InboxMessage, error)
	// ListIDsByUserID returns the identity set used by the dedup merger.
	ListIDsByUserID(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error)
	SetRead(ctx context.Context, id string, userID uuid.UUID, read bool) error
	SetFolder(ctx context.Context, id string, userID uuid.UUID, folder string) error
	Delete(ctx context.Context, id string, userID uuid.UUID) error
}

// RuleRepository defines the interface for automation rules.
type RuleRepository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Rule, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
	// ListEnabledByUserID returns enabled rules in creation order, which is
	// the evaluation order.
	ListEnabledByUserID(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
