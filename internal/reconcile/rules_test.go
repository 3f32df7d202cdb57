package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

func inboundMsg(from, content string) *inboxdomain.InboxMessage {
	return inboxdomain.NewInboxMessage(uuid.NewString(), uuid.New(), from, "0412345678",
		content, inboxdomain.TypeSMS, time.Now().UTC())
}

func replyRule(userID uuid.UUID, condType inboxdomain.ConditionType, condValue, reply string) *inboxdomain.Rule {
	return inboxdomain.NewRule(uuid.New(), userID, "r", condType, condValue, inboxdomain.ActionReply, reply)
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)
	msg := inboundMsg("+61400000001", "hello world")

	first := replyRule(owner.ID, inboxdomain.ConditionContains, "hello", "hi there")
	second := replyRule(owner.ID, inboxdomain.ConditionContains, "world", "also matches")

	matched := e.Evaluate(context.Background(), msg, owner, []*inboxdomain.Rule{first, second})
	require.NotNil(t, matched)
	assert.Equal(t, first.ID, matched.ID)

	// Exactly one send: the second matching rule never executes.
	sends := sender.sends()
	require.Len(t, sends, 1)
	assert.Equal(t, []string{"+61400000001"}, sends[0].To)
	assert.Equal(t, "hi there", sends[0].Content)
	assert.Equal(t, "0412345678", sends[0].From)
}

func TestEvaluate_ContainsIsCaseInsensitive(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)

	rule := replyRule(owner.ID, inboxdomain.ConditionContains, "HELLO", "hi")
	matched := e.Evaluate(context.Background(), inboundMsg("+61400000001", "well hello"), owner, []*inboxdomain.Rule{rule})
	assert.NotNil(t, matched)
	assert.Len(t, sender.sends(), 1)
}

func TestEvaluate_FromCondition(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)

	rule := replyRule(owner.ID, inboxdomain.ConditionFrom, "0400000001", "hi")
	matched := e.Evaluate(context.Background(), inboundMsg("+61400000001", "anything"), owner, []*inboxdomain.Rule{rule})
	assert.NotNil(t, matched)
}

func TestEvaluate_TimeAndKeywordNeverMatch(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)
	msg := inboundMsg("+61400000001", "hello")

	rules := []*inboxdomain.Rule{
		replyRule(owner.ID, inboxdomain.ConditionTime, "09:00-17:00", "hi"),
		replyRule(owner.ID, inboxdomain.ConditionKeyword, "hello", "hi"),
	}
	matched := e.Evaluate(context.Background(), msg, owner, rules)
	assert.Nil(t, matched)
	assert.Empty(t, sender.sends())
}

func TestEvaluate_DisabledRulesSkipped(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)

	rule := replyRule(owner.ID, inboxdomain.ConditionContains, "hello", "hi")
	rule.Enabled = false
	matched := e.Evaluate(context.Background(), inboundMsg("x", "hello"), owner, []*inboxdomain.Rule{rule})
	assert.Nil(t, matched)
	assert.Empty(t, sender.sends())
}

func TestEvaluate_ReplySkippedWithoutPersonalMobile(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "", userdomain.RoleUser, 0)

	rule := replyRule(owner.ID, inboxdomain.ConditionContains, "hello", "hi")
	matched := e.Evaluate(context.Background(), inboundMsg("x", "hello"), owner, []*inboxdomain.Rule{rule})
	// The rule still matched (and consumed evaluation) even though the send
	// was skipped.
	assert.NotNil(t, matched)
	assert.Empty(t, sender.sends())
}

func TestEvaluate_SendFailureDoesNotPanicOrPropagate(t *testing.T) {
	sender := &spySender{fail: errors.New("carrier down")}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)

	rule := replyRule(owner.ID, inboxdomain.ConditionContains, "hello", "hi")
	matched := e.Evaluate(context.Background(), inboundMsg("x", "hello"), owner, []*inboxdomain.Rule{rule})
	assert.NotNil(t, matched)
}

func TestEvaluate_UnimplementedActionsAreNoOps(t *testing.T) {
	sender := &spySender{}
	e := NewRuleEvaluator(sender, testLogger())
	owner := userdomain.NewUser(uuid.New(), "alice", "h", "0412345678", userdomain.RoleUser, 0)

	for _, action := range []inboxdomain.ActionType{inboxdomain.ActionForward, inboxdomain.ActionDelete, inboxdomain.ActionFolder} {
		rule := inboxdomain.NewRule(uuid.New(), owner.ID, "r", inboxdomain.ConditionContains, "hello", action, "v")
		matched := e.Evaluate(context.Background(), inboundMsg("x", "hello"), owner, []*inboxdomain.Rule{rule})
		assert.NotNil(t, matched, "action %s should still match", action)
	}
	assert.Empty(t, sender.sends())
}
