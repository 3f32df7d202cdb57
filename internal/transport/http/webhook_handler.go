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

	"github.com/ozmsg/gateway/internal/reconcile"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// WebhookHandler serves the provider-push inbound webhook and the
// pull-based sync trigger.
type WebhookHandler struct {
	reconciler       *reconcile.Reconciler
	syncDefaultLimit int
	logger           *slog.Logger
	validate         *validator.Validate
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(reconciler *reconcile.Reconciler, syncDefaultLimit int, logger *slog.Logger, validate *validator.Validate) *WebhookHandler {
	return &WebhookHandler{
		reconciler:       reconciler,
		syncDefaultLimit: syncDefaultLimit,
		logger:           logger.With("handler", "webhooks"),
		validate:         validate,
	}
}

// RegisterPublicRoutes mounts the unauthenticated webhook endpoint. The
// carrier pushes here; it cannot carry a bearer token.
func (h *WebhookHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/webhooks/inbound", h.handleInbound)
}

// RegisterRoutes mounts the authenticated sync trigger.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sync", h.handleSync)
}

func (h *WebhookHandler) handleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InboundWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	msg, err := h.reconciler.IngestWebhook(ctx, req.From, req.To, req.Content, receivedAt)
	if err != nil {
		if errors.Is(err, reconcile.ErrOwnerNotFound) {
			respondError(w, http.StatusNotFound, "no recipient for destination number")
			return
		}
		h.logger.ErrorContext(ctx, "Webhook ingest failed", "error", err, "from", req.From)
		respondError(w, http.StatusInternalServerError, "failed to ingest message")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *WebhookHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	// Non-admins can only sync themselves.
	if !user.IsAdmin() && targetID != user.ID {
		respondError(w, http.StatusForbidden, "cannot sync another user")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.syncDefaultLimit
	}

	count, err := h.reconciler.SyncUser(ctx, targetID, limit)
	if err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.ErrorContext(ctx, "Sync failed", "error", err, "user_id", targetID)
		respondError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, SyncResponse{NewMessages: count})
}
