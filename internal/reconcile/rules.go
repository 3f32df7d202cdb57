package reconcile

import (
	"context"
	"log/slog"
	"strings"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// RuleEvaluator applies a user's automation rules to newly received inbound
// messages. Rules run in stored (creation) order and the first matching
// rule's action executes; nothing after it is evaluated.
type RuleEvaluator struct {
	sender provider.Sender
	logger *slog.Logger
}

// NewRuleEvaluator creates a RuleEvaluator.
func NewRuleEvaluator(sender provider.Sender, logger *slog.Logger) *RuleEvaluator {
	return &RuleEvaluator{
		sender: sender,
		logger: logger.With("component", "rule_evaluator"),
	}
}

// Evaluate runs the first matching enabled rule against msg and returns it,
// or nil when no rule matched. Action failures are logged and swallowed so
// evaluation of the rest of a batch continues; the message itself is already
// durably stored by the time rules run.
func (e *RuleEvaluator) Evaluate(ctx context.Context, msg *inboxdomain.InboxMessage, owner *userdomain.User, rules []*inboxdomain.Rule) *inboxdomain.Rule {
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if !matches(rule, msg) {
			continue
		}

		e.execute(ctx, rule, msg, owner)
		return rule
	}
	return nil
}

// matches evaluates a rule condition against a message. "time" and "keyword"
// conditions are recognized but intentionally never match: they are declared
// behavior gaps, not silent passes.
func matches(rule *inboxdomain.Rule, msg *inboxdomain.InboxMessage) bool {
	switch rule.ConditionType {
	case inboxdomain.ConditionContains:
		return strings.Contains(strings.ToLower(msg.Content), strings.ToLower(rule.ConditionValue))
	case inboxdomain.ConditionFrom:
		return strings.Contains(msg.From, rule.ConditionValue)
	case inboxdomain.ConditionTime, inboxdomain.ConditionKeyword:
		return false
	default:
		return false
	}
}

func (e *RuleEvaluator) execute(ctx context.Context, rule *inboxdomain.Rule, msg *inboxdomain.InboxMessage, owner *userdomain.User) {
	switch rule.ActionType {
	case inboxdomain.ActionReply:
		e.reply(ctx, rule, msg, owner)
	case inboxdomain.ActionForward, inboxdomain.ActionDelete, inboxdomain.ActionFolder:
		// Recognized but not implemented.
		ruleActionsCounter.WithLabelValues(string(rule.ActionType), "noop").Inc()
		e.logger.DebugContext(ctx, "Rule action not implemented, skipping",
			"rule_id", rule.ID, "action", rule.ActionType)
	default:
		ruleActionsCounter.WithLabelValues(string(rule.ActionType), "unknown").Inc()
	}
}

func (e *RuleEvaluator) reply(ctx context.Context, rule *inboxdomain.Rule, msg *inboxdomain.InboxMessage, owner *userdomain.User) {
	if owner == nil || owner.PersonalMobile == "" {
		ruleActionsCounter.WithLabelValues("reply", "skipped").Inc()
		e.logger.InfoContext(ctx, "Reply rule matched but owner has no personal mobile, skipping send",
			"rule_id", rule.ID, "message_id", msg.ID)
		return
	}

	_, err := e.sender.Send(ctx, provider.SendRequest{
		To:      []string{msg.From},
		From:    owner.PersonalMobile,
		Content: rule.ActionValue,
	})
	if err != nil {
		ruleActionsCounter.WithLabelValues("reply", "error").Inc()
		e.logger.ErrorContext(ctx, "Reply rule send failed",
			"error", err, "rule_id", rule.ID, "message_id", msg.ID, "to", msg.From)
		return
	}

	ruleActionsCounter.WithLabelValues("reply", "sent").Inc()
	e.logger.InfoContext(ctx, "Reply rule executed",
		"rule_id", rule.ID, "message_id", msg.ID, "to", msg.From)
}
