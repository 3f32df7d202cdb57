package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
)

// Merger persists freshly fetched provider messages that are not already
// stored locally. Persistence is best-effort per record: a failure on one
// message never blocks the rest, and a duplicate-key race is treated as
// "already persisted", which makes the merge idempotent under concurrent
// invocation.
type Merger struct {
	inboxRepo inboxdomain.InboxRepository
	logger    *slog.Logger
}

// NewMerger creates a Merger.
func NewMerger(inboxRepo inboxdomain.InboxRepository, logger *slog.Logger) *Merger {
	return &Merger{
		inboxRepo: inboxRepo,
		logger:    logger.With("component", "merger"),
	}
}

// Merge writes each incoming message whose identity is absent from existing,
// attributing it to owner with read=false and the default folder. It returns
// exactly the records that were newly persisted; rules must only ever run
// against those.
func (m *Merger) Merge(ctx context.Context, existing map[string]struct{}, incoming []provider.Message, owner uuid.UUID) []*inboxdomain.InboxMessage {
	var persisted []*inboxdomain.InboxMessage

	for _, src := range incoming {
		id := Identity(src)
		if _, ok := existing[id]; ok {
			duplicatesSkippedCounter.Inc()
			continue
		}

		msg := inboxdomain.NewInboxMessage(id, owner, src.From, src.To, src.Content,
			inboxdomain.MessageType(src.Type), src.ReceivedAt)

		if err := m.inboxRepo.Create(ctx, msg); err != nil {
			if errors.Is(err, inboxdomain.ErrDuplicateEntry) {
				// Lost a race with a concurrent merge; the record exists.
				duplicatesSkippedCounter.Inc()
				m.logger.DebugContext(ctx, "Skipping message persisted by concurrent run", "message_id", id)
				continue
			}
			m.logger.ErrorContext(ctx, "Failed to persist inbound message, continuing with batch",
				"error", err, "message_id", id)
			continue
		}

		existing[id] = struct{}{}
		messagesPersistedCounter.Inc()
		persisted = append(persisted, msg)
	}

	return persisted
}
