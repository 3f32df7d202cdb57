package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
)

// RuleHandler serves per-user automation rule CRUD.
type RuleHandler struct {
	ruleRepo inboxdomain.RuleRepository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewRuleHandler creates a RuleHandler.
func NewRuleHandler(ruleRepo inboxdomain.RuleRepository, logger *slog.Logger, validate *validator.Validate) *RuleHandler {
	return &RuleHandler{
		ruleRepo: ruleRepo,
		logger:   logger.With("handler", "rules"),
		validate: validate,
	}
}

// RegisterRoutes mounts authenticated rule routes.
func (h *RuleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rules", h.handleList)
	r.Post("/rules", h.handleCreate)
	r.Put("/rules/{id}", h.handleUpdate)
	r.Delete("/rules/{id}", h.handleDelete)
}

func (h *RuleHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	rules, err := h.ruleRepo.ListByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list rules", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	if rules == nil {
		rules = []*inboxdomain.Rule{}
	}
	respondJSON(w, http.StatusOK, rules)
}

func (h *RuleHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)

	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	rule := inboxdomain.NewRule(uuid.New(), user.ID, req.Name,
		inboxdomain.ConditionType(req.ConditionType), req.ConditionValue,
		inboxdomain.ActionType(req.ActionType), req.ActionValue)
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.ruleRepo.Create(ctx, rule); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create rule", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

func (h *RuleHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	rule, err := h.ruleRepo.GetByID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, inboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "rule not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load rule")
		return
	}

	rule.Name = req.Name
	rule.ConditionType = inboxdomain.ConditionType(req.ConditionType)
	rule.ConditionValue = req.ConditionValue
	rule.ActionType = inboxdomain.ActionType(req.ActionType)
	rule.ActionValue = req.ActionValue
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := h.ruleRepo.Update(ctx, rule); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update rule", "error", err, "rule_id", id)
		respondError(w, http.StatusInternalServerError, "failed to update rule")
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

func (h *RuleHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	if err := h.ruleRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, inboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "rule not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
