package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// Reconciler runs the inbound-message pipeline: page the provider, resolve
// each message's owner, merge into local storage, and evaluate the owner's
// automation rules against the newly persisted messages. One Reconciler is
// shared between requests; it holds no cross-invocation mutable state, so
// concurrent runs are safe — the merger's duplicate-tolerant writes are what
// keep overlapping runs from double-inserting.
type Reconciler struct {
	paginator *Paginator
	resolver  *OwnerResolver
	merger    *Merger
	evaluator *RuleEvaluator
	userRepo  userdomain.UserRepository
	inboxRepo inboxdomain.InboxRepository
	ruleRepo  inboxdomain.RuleRepository
	logger    *slog.Logger
}

// NewReconciler wires the pipeline components together.
func NewReconciler(
	paginator *Paginator,
	resolver *OwnerResolver,
	merger *Merger,
	evaluator *RuleEvaluator,
	userRepo userdomain.UserRepository,
	inboxRepo inboxdomain.InboxRepository,
	ruleRepo inboxdomain.RuleRepository,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		paginator: paginator,
		resolver:  resolver,
		merger:    merger,
		evaluator: evaluator,
		userRepo:  userRepo,
		inboxRepo: inboxRepo,
		ruleRepo:  ruleRepo,
		logger:    logger.With("component", "reconciler"),
	}
}

// SyncUser pulls up to limit inbound messages from the provider and merges
// them into local storage. Messages whose destination resolves to no local
// owner are skipped with a log line (the push path in IngestWebhook rejects
// them instead). Returns the number of newly persisted messages.
func (r *Reconciler) SyncUser(ctx context.Context, userID uuid.UUID, limit int) (int, error) {
	if _, err := r.userRepo.GetByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("sync requester: %w", err)
	}

	fetched := r.paginator.FetchInbound(ctx, limit)
	if len(fetched) == 0 {
		return 0, nil
	}

	// Group fetched messages by resolved owner. Owner lookups are memoized
	// per destination number for the duration of this pass only.
	ownerCache := make(map[string]uuid.UUID)
	byOwner := make(map[uuid.UUID][]provider.Message)
	for _, msg := range fetched {
		owner, ok := ownerCache[msg.To]
		if !ok {
			resolved, err := r.resolver.Resolve(ctx, msg.To)
			if err != nil {
				if errors.Is(err, ErrOwnerNotFound) {
					ownerUnresolvedCounter.Inc()
					r.logger.WarnContext(ctx, "Skipping inbound message with unresolvable owner",
						"to", msg.To, "message_id", Identity(msg))
					continue
				}
				r.logger.ErrorContext(ctx, "Owner resolution failed, skipping message",
					"error", err, "to", msg.To)
				continue
			}
			owner = resolved
			ownerCache[msg.To] = owner
		}
		byOwner[owner] = append(byOwner[owner], msg)
	}

	total := 0
	for owner, msgs := range byOwner {
		existing, err := r.inboxRepo.ListIDsByUserID(ctx, owner)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to load existing message ids, skipping owner",
				"error", err, "owner_id", owner)
			continue
		}

		persisted := r.merger.Merge(ctx, existing, msgs, owner)
		total += len(persisted)
		r.evaluateRules(ctx, owner, persisted)
	}

	r.logger.InfoContext(ctx, "Sync complete",
		"requested_by", userID, "fetched", len(fetched), "persisted", total)
	return total, nil
}

// IngestWebhook handles a single provider-pushed inbound message. Unlike the
// bulk sync path, an unresolvable owner is an error (ErrOwnerNotFound) and
// nothing is persisted. A duplicate delivery returns the already-stored
// record without re-triggering rules.
func (r *Reconciler) IngestWebhook(ctx context.Context, from, to, content string, receivedAt time.Time) (*inboxdomain.InboxMessage, error) {
	owner, err := r.resolver.Resolve(ctx, to)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			ownerUnresolvedCounter.Inc()
		}
		return nil, err
	}

	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	id := inboxdomain.SyntheticID(from, to, content, receivedAt)
	msg := inboxdomain.NewInboxMessage(id, owner, from, to, content, inboxdomain.TypeSMS, receivedAt)

	if err := r.inboxRepo.Create(ctx, msg); err != nil {
		if errors.Is(err, inboxdomain.ErrDuplicateEntry) {
			duplicatesSkippedCounter.Inc()
			r.logger.InfoContext(ctx, "Webhook redelivered known message", "message_id", id)
			return r.inboxRepo.GetByID(ctx, id, owner)
		}
		return nil, fmt.Errorf("failed to persist inbound message: %w", err)
	}
	messagesPersistedCounter.Inc()

	r.evaluateRules(ctx, owner, []*inboxdomain.InboxMessage{msg})
	return msg, nil
}

// evaluateRules applies the owner's enabled rules to each newly persisted
// message. Failures here never propagate: the messages are already durable.
func (r *Reconciler) evaluateRules(ctx context.Context, ownerID uuid.UUID, msgs []*inboxdomain.InboxMessage) {
	if len(msgs) == 0 {
		return
	}

	rules, err := r.ruleRepo.ListEnabledByUserID(ctx, ownerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load rules, skipping evaluation", "error", err, "owner_id", ownerID)
		return
	}
	if len(rules) == 0 {
		return
	}

	owner, err := r.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load rule owner, skipping evaluation", "error", err, "owner_id", ownerID)
		return
	}

	for _, msg := range msgs {
		if matched := r.evaluator.Evaluate(ctx, msg, owner, rules); matched != nil {
			r.logger.DebugContext(ctx, "Rule matched message",
				"rule_id", matched.ID, "message_id", msg.ID, "action", matched.ActionType)
		}
	}
}
