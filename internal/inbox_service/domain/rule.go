package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConditionType is the closed set of rule condition kinds.
type ConditionType string

const (
	ConditionContains ConditionType = "contains"
	ConditionFrom     ConditionType = "from"
	// ConditionTime and ConditionKeyword are accepted and stored but never
	// match; they are declared behavior gaps, not silent passes.
	ConditionTime    ConditionType = "time"
	ConditionKeyword ConditionType = "keyword"
)

// Valid reports whether the condition type is a known value.
func (c ConditionType) Valid() bool {
	switch c {
	case ConditionContains, ConditionFrom, ConditionTime, ConditionKeyword:
		return true
	}
	return false
}

// ActionType is the closed set of rule action kinds.
type ActionType string

const (
	ActionReply ActionType = "reply"
	// ActionForward, ActionDelete, and ActionFolder are accepted and stored
	// but execute as no-ops.
	ActionForward ActionType = "forward"
	ActionDelete  ActionType = "delete"
	ActionFolder  ActionType = "folder"
)

// Valid reports whether the action type is a known value.
func (a ActionType) Valid() bool {
	switch a {
	case ActionReply, ActionForward, ActionDelete, ActionFolder:
		return true
	}
	return false
}

// Rule is a per-user condition/action pair evaluated against inbound
// messages. Rules run in creation order; the first match wins.
type Rule struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"userId"`
	Name           string        `json:"name"`
	ConditionType  ConditionType `json:"conditionType"`
	ConditionValue string        `json:"conditionValue"`
	ActionType     ActionType    `json:"actionType"`
	ActionValue    string        `json:"actionValue"`
	Enabled        bool          `json:"enabled"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// NewRule creates an enabled Rule. ID is generated by the caller.
func NewRule(id, userID uuid.UUID, name string, condType ConditionType, condValue string, actType ActionType, actValue string) *Rule {
	now := time.Now().UTC()
	return &Rule{
		ID:             id,
		UserID:         userID,
		Name:           name,
		ConditionType:  condType,
		ConditionValue: condValue,
		ActionType:     actType,
		ActionValue:    actValue,
		Enabled:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
