package domain

import (
	"context"

	"github.com/google/uuid"
)

// MessageRepository defines the interface for stored outbound messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Message, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status MessageStatus, providerID string) error
}
