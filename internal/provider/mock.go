package provider

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mock is a simulated carrier for local development and tests. Sends always
// succeed; fetches replay the Inbound queue in fixed page order, respecting
// the carrier's small page-size cap.
type Mock struct {
	logger   *slog.Logger
	name     string
	pageSize int

	mu      sync.Mutex
	inbound []Message
	sent    []SendRequest
}

// NewMock creates a Mock provider. pageSize mirrors the real carrier's
// server-side listing cap.
func NewMock(logger *slog.Logger, pageSize int) *Mock {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Mock{
		logger:   logger.With("provider", "mock"),
		name:     "mock",
		pageSize: pageSize,
	}
}

func (m *Mock) Name() string { return m.name }

// QueueInbound appends messages to the simulated inbound listing.
func (m *Mock) QueueInbound(msgs ...Message) {
	m.mu.Lock()
	m.inbound = append(m.inbound, msgs...)
	m.mu.Unlock()
}

// Sent returns a copy of every send request received so far.
func (m *Mock) Sent() []SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendRequest, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *Mock) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	m.mu.Lock()
	m.sent = append(m.sent, req)
	m.mu.Unlock()

	id := uuid.NewString()
	m.logger.InfoContext(ctx, "Mock provider: message sent",
		"message_id", id, "to", req.To, "content_len", len(req.Content))
	return &SendResult{MessageID: id, Status: "queued"}, nil
}

func (m *Mock) GetMessages(ctx context.Context, req FetchRequest) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Direction != DirectionIncoming {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 || limit > m.pageSize {
		limit = m.pageSize
	}
	if req.Offset >= len(m.inbound) {
		return nil, nil
	}
	end := req.Offset + limit
	if end > len(m.inbound) {
		end = len(m.inbound)
	}
	page := make([]Message, end-req.Offset)
	copy(page, m.inbound[req.Offset:end])
	return page, nil
}

// SeedInboundMessage is a convenience for wiring demo data in local dev.
func SeedInboundMessage(from, to, content string) Message {
	return Message{
		ID:         uuid.NewString(),
		From:       from,
		To:         to,
		Content:    content,
		Type:       "sms",
		ReceivedAt: time.Now().UTC(),
	}
}
