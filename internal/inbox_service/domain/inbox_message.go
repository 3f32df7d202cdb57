package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes SMS from MMS.
type MessageType string

const (
	TypeSMS MessageType = "sms"
	TypeMMS MessageType = "mms"
)

// DefaultFolder is where inbound messages land unless a rule moves them.
const DefaultFolder = "personal"

// InboxMessage is a provider-originated message attributed to a local user.
// ID is the provider-assigned message id when available, otherwise a
// synthetic id derived deterministically from the message identity fields
// (see SyntheticID) so repeated fetches of the same message dedup correctly.
type InboxMessage struct {
	ID         string      `json:"id"`
	UserID     uuid.UUID   `json:"userId"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	ReceivedAt time.Time   `json:"receivedAt"`
	Read       bool        `json:"read"`
	Folder     string      `json:"folder"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewInboxMessage creates an unread InboxMessage in the default folder.
func NewInboxMessage(id string, userID uuid.UUID, from, to, content string, msgType MessageType, receivedAt time.Time) *InboxMessage {
	if msgType != TypeMMS {
		msgType = TypeSMS
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	return &InboxMessage{
		ID:         id,
		UserID:     userID,
		From:       from,
		To:         to,
		Content:    content,
		Type:       msgType,
		ReceivedAt: receivedAt,
		Read:       false,
		Folder:     DefaultFolder,
		CreatedAt:  time.Now().UTC(),
	}
}

// syntheticIDNamespace is a fixed namespace so synthetic ids are stable
// across processes and fetches.
var syntheticIDNamespace = uuid.MustParse("7b0dfa13-6a7c-4f51-9e2e-4c1d25b7aee2")

// SyntheticID derives a deterministic message id from the identity fields of
// a provider message that arrived without one. The same (from, to, content,
// receivedAt) always yields the same id, preserving dedup across fetches.
func SyntheticID(from, to, content string, receivedAt time.Time) string {
	seed := from + "|" + to + "|" + content + "|" + receivedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(syntheticIDNamespace, []byte(seed)).String()
}
