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

	phonebookdomain "github.com/ozmsg/gateway/internal/phonebook_service/domain"
)

// ContactHandler serves per-user contact CRUD.
type ContactHandler struct {
	contactRepo phonebookdomain.ContactRepository
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contactRepo phonebookdomain.ContactRepository, logger *slog.Logger, validate *validator.Validate) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
		logger:      logger.With("handler", "contacts"),
		validate:    validate,
	}
}

// RegisterRoutes mounts authenticated contact routes.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", h.handleList)
	r.Post("/contacts", h.handleCreate)
	r.Get("/contacts/{id}", h.handleGet)
	r.Put("/contacts/{id}", h.handleUpdate)
	r.Delete("/contacts/{id}", h.handleDelete)
}

func (h *ContactHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	offset, limit := paginationParams(r, 50)

	contacts, err := h.contactRepo.ListByUserID(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list contacts", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	if contacts == nil {
		contacts = []*phonebookdomain.Contact{}
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	contact := phonebookdomain.NewContact(uuid.New(), user.ID, req.Name, req.PhoneNumber,
		req.Email, phonebookdomain.Category(req.Category))
	if err := h.contactRepo.Create(ctx, contact); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create contact", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	contact, err := h.contactRepo.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, phonebookdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load contact")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	contact, err := h.contactRepo.GetByID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, phonebookdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load contact")
		return
	}

	contact.Name = req.Name
	contact.PhoneNumber = req.PhoneNumber
	contact.Email = req.Email
	if req.Category != "" {
		contact.Category = phonebookdomain.Category(req.Category)
	}
	contact.UpdatedAt = time.Now().UTC()

	if err := h.contactRepo.Update(ctx, contact); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update contact", "error", err, "contact_id", id)
		respondError(w, http.StatusInternalServerError, "failed to update contact")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := h.contactRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, phonebookdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
