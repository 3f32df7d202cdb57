package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageStatus tracks the lifecycle of an outbound message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusFailed    MessageStatus = "failed"
	StatusScheduled MessageStatus = "scheduled"
	StatusCancelled MessageStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusFailed, StatusScheduled, StatusCancelled:
		return true
	}
	return false
}

// Recipients is the canonical ordered list of destination numbers. Clients
// historically supplied this field as a bare string, a JSON-array-encoded
// string, or a real list; all three decode into the same canonical form
// here, at the boundary, so nothing downstream ever compares raw variants.
type Recipients []string

// UnmarshalJSON accepts "0400000000", "[\"0400000000\",...]" (array encoded
// as a string), and ["0400000000", ...].
func (r *Recipients) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*r = normalizeList(asList)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("recipients must be a string or a list of strings")
	}
	*r = ParseRecipients(asString)
	return nil
}

// ParseRecipients converts a stored or client-supplied string into the
// canonical list. A JSON-array-encoded string is decoded; anything else is
// treated as a single (possibly comma-separated) recipient value.
func ParseRecipients(raw string) Recipients {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
			return normalizeList(list)
		}
	}
	return normalizeList(strings.Split(trimmed, ","))
}

func normalizeList(in []string) Recipients {
	out := make(Recipients, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Encode returns the storage form: a JSON array string.
func (r Recipients) Encode() (string, error) {
	b, err := json.Marshal([]string(r))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Message is an outbound message.
type Message struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"userId"`
	To          Recipients    `json:"to"`
	From        string        `json:"from,omitempty"`
	Content     string        `json:"content"`
	Type        string        `json:"type"` // "sms" or "mms"
	Status      MessageStatus `json:"status"`
	Credits     int           `json:"credits"`
	ProviderID  string        `json:"providerId,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	SentAt      *time.Time    `json:"sentAt,omitempty"`
	DeliveredAt *time.Time    `json:"deliveredAt,omitempty"`
	ScheduledAt *time.Time    `json:"scheduledAt,omitempty"`
}

// NewMessage creates an outbound Message pending send.
func NewMessage(id, userID uuid.UUID, to Recipients, from, content, msgType string, scheduledAt *time.Time) *Message {
	if msgType == "" {
		msgType = "sms"
	}
	status := StatusSent
	if scheduledAt != nil {
		status = StatusScheduled
	}
	return &Message{
		ID:          id,
		UserID:      userID,
		To:          to,
		From:        from,
		Content:     content,
		Type:        msgType,
		Status:      status,
		Credits:     len(to),
		CreatedAt:   time.Now().UTC(),
		ScheduledAt: scheduledAt,
	}
}
