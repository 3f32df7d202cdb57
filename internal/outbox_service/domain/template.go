package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Template is a reusable message body owned by a user. Bodies are stored
// verbatim; no variable substitution happens on send.
type Template struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTemplate creates a Template. ID is generated by the caller.
func NewTemplate(id, userID uuid.UUID, name, content string) *Template {
	now := time.Now().UTC()
	return &Template{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TemplateRepository defines the interface for stored message templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Template, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
