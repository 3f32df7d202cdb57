package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	outboxapp "github.com/ozmsg/gateway/internal/outbox_service/app"
	outboxdomain "github.com/ozmsg/gateway/internal/outbox_service/domain"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// MessageHandler serves outbound message sending/history and the inbox.
type MessageHandler struct {
	sendService *outboxapp.SendService
	messageRepo outboxdomain.MessageRepository
	inboxRepo   inboxdomain.InboxRepository
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(sendService *outboxapp.SendService, messageRepo outboxdomain.MessageRepository, inboxRepo inboxdomain.InboxRepository, logger *slog.Logger, validate *validator.Validate) *MessageHandler {
	return &MessageHandler{
		sendService: sendService,
		messageRepo: messageRepo,
		inboxRepo:   inboxRepo,
		logger:      logger.With("handler", "messages"),
		validate:    validate,
	}
}

// RegisterRoutes mounts authenticated message and inbox routes.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/messages/send", h.handleSend)
	r.Get("/messages", h.handleListSent)
	r.Get("/messages/{id}", h.handleGetSent)
	r.Get("/inbox", h.handleListInbox)
	r.Get("/inbox/{id}", h.handleGetInbox)
	r.Patch("/inbox/{id}", h.handlePatchInbox)
	r.Delete("/inbox/{id}", h.handleDeleteInbox)
}

func (h *MessageHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	msg, err := h.sendService.Send(ctx, outboxapp.SendInput{
		UserID:      user.ID,
		To:          req.To,
		From:        req.From,
		Content:     req.Content,
		Type:        req.Type,
		ScheduledAt: req.ScheduleSend,
	})
	if err != nil {
		switch {
		case errors.Is(err, userdomain.ErrInsufficientCredits):
			respondError(w, http.StatusPaymentRequired, "insufficient credits")
		case errors.Is(err, userdomain.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, outboxdomain.ErrNoRecipients):
			respondError(w, http.StatusBadRequest, "no recipients")
		case msg != nil:
			// Carrier failure: the message is recorded as failed.
			respondJSON(w, http.StatusBadGateway, msg)
		default:
			h.logger.ErrorContext(ctx, "Send failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) handleListSent(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	offset, limit := paginationParams(r, 50)

	msgs, err := h.messageRepo.ListByUserID(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list messages", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []*outboxdomain.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) handleGetSent(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	msg, err := h.messageRepo.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, outboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "message not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load message")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) handleListInbox(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	offset, limit := paginationParams(r, 50)

	msgs, err := h.inboxRepo.ListByUserID(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list inbox", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	if msgs == nil {
		msgs = []*inboxdomain.InboxMessage{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) handleGetInbox(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	msg, err := h.inboxRepo.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, inboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "inbox message not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load inbox message")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) handlePatchInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)
	id := chi.URLParam(r, "id")

	var req PatchInboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Read == nil && req.Folder == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Read != nil {
		if err := h.inboxRepo.SetRead(ctx, id, user.ID, *req.Read); err != nil {
			if errors.Is(err, inboxdomain.ErrNotFound) {
				respondError(w, http.StatusNotFound, "inbox message not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to update inbox message")
			return
		}
	}
	if req.Folder != nil {
		if err := h.inboxRepo.SetFolder(ctx, id, user.ID, *req.Folder); err != nil {
			if errors.Is(err, inboxdomain.ErrNotFound) {
				respondError(w, http.StatusNotFound, "inbox message not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to update inbox message")
			return
		}
	}

	msg, err := h.inboxRepo.GetByID(ctx, id, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load inbox message")
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) handleDeleteInbox(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.inboxRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, inboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "inbox message not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete inbox message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
