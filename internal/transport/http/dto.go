package http

import (
	"time"

	outboxdomain "github.com/ozmsg/gateway/internal/outbox_service/domain"
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterUserRequest is the body of POST /api/v1/auth/register (admin only).
type RegisterUserRequest struct {
	Username       string `json:"username" validate:"required,min=3"`
	Password       string `json:"password" validate:"required,min=8"`
	PersonalMobile string `json:"personalMobile,omitempty"`
	Role           string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Credits        int    `json:"credits,omitempty" validate:"gte=0"`
}

// UpdateUserRequest is the body of PUT /api/v1/users/{id} (admin only).
type UpdateUserRequest struct {
	PersonalMobile *string `json:"personalMobile,omitempty"`
	Role           *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Credits        *int    `json:"credits,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

// ContactRequest is the body of contact create/update calls.
type ContactRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Category    string `json:"category,omitempty" validate:"omitempty,oneof=personal company"`
}

// RuleRequest is the body of rule create/update calls.
type RuleRequest struct {
	Name           string `json:"name" validate:"required"`
	ConditionType  string `json:"conditionType" validate:"required,oneof=contains from time keyword"`
	ConditionValue string `json:"conditionValue" validate:"required"`
	ActionType     string `json:"actionType" validate:"required,oneof=reply forward delete folder"`
	ActionValue    string `json:"actionValue,omitempty"`
	Enabled        *bool  `json:"enabled,omitempty"`
}

// TemplateRequest is the body of template create/update calls.
type TemplateRequest struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// SendMessageRequest is the body of POST /api/v1/messages/send. The To field
// accepts a bare string, a JSON-array-encoded string, or a list; all decode
// into the canonical recipient list.
type SendMessageRequest struct {
	To           outboxdomain.Recipients `json:"to" validate:"required,min=1"`
	From         string                  `json:"from,omitempty"`
	Content      string                  `json:"content" validate:"required"`
	Type         string                  `json:"type,omitempty" validate:"omitempty,oneof=sms mms"`
	ScheduleSend *time.Time              `json:"scheduleSend,omitempty"`
}

// InboundWebhookRequest is the provider-pushed inbound message body.
type InboundWebhookRequest struct {
	From       string     `json:"from" validate:"required"`
	To         string     `json:"to" validate:"required"`
	Content    string     `json:"content" validate:"required"`
	ReceivedAt *time.Time `json:"receivedAt,omitempty"`
}

// SyncRequest triggers a reconciliation pull for a user.
type SyncRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,gt=0,lte=200"`
}

// SyncResponse reports how many messages the sync newly persisted.
type SyncResponse struct {
	NewMessages int `json:"newMessages"`
}

// PatchInboxRequest updates read state or folder of an inbox message.
type PatchInboxRequest struct {
	Read   *bool   `json:"read,omitempty"`
	Folder *string `json:"folder,omitempty"`
}
