// Package provider defines the interface to the external SMS/MMS carrier API.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Direction of messages to fetch from the carrier.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Message is a carrier-originated message as returned by the fetch API.
// ID may be empty when the carrier omits it; callers are expected to
// synthesize a deterministic identity in that case.
type Message struct {
	ID         string    `json:"messageId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Content    string    `json:"messageContent"`
	Type       string    `json:"type"` // "sms" or "mms"
	ReceivedAt time.Time `json:"receivedTimestamp"`
}

// SendRequest holds the data for an outbound send.
type SendRequest struct {
	To           []string
	From         string // optional; carrier default sender when empty
	Content      string
	ScheduleSend *time.Time // optional scheduled delivery
}

// SendResult is the carrier's acknowledgement of a send.
type SendResult struct {
	MessageID string
	Status    string
}

// FetchRequest describes one page of the carrier's message listing.
type FetchRequest struct {
	Direction Direction
	Limit     int
	Offset    int
}

// Sender submits outbound messages to the carrier.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	Name() string
}

// Fetcher retrieves pages of carrier messages.
type Fetcher interface {
	GetMessages(ctx context.Context, req FetchRequest) ([]Message, error)
}

// Client is the full carrier surface.
type Client interface {
	Sender
	Fetcher
}

// RateLimitError signals a 429 from the carrier. RetryAfter carries the
// carrier's hint when present, zero otherwise.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider rate limited, retry after %s", e.RetryAfter)
	}
	return "provider rate limited"
}
