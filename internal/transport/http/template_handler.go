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

	outboxdomain "github.com/ozmsg/gateway/internal/outbox_service/domain"
)

// TemplateHandler serves per-user message template CRUD.
type TemplateHandler struct {
	templateRepo outboxdomain.TemplateRepository
	logger       *slog.Logger
	validate     *validator.Validate
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(templateRepo outboxdomain.TemplateRepository, logger *slog.Logger, validate *validator.Validate) *TemplateHandler {
	return &TemplateHandler{
		templateRepo: templateRepo,
		logger:       logger.With("handler", "templates"),
		validate:     validate,
	}
}

// RegisterRoutes mounts authenticated template routes.
func (h *TemplateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/templates", h.handleList)
	r.Post("/templates", h.handleCreate)
	r.Get("/templates/{id}", h.handleGet)
	r.Put("/templates/{id}", h.handleUpdate)
	r.Delete("/templates/{id}", h.handleDelete)
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	offset, limit := paginationParams(r, 50)

	templates, err := h.templateRepo.ListByUserID(r.Context(), user.ID, offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list templates", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []*outboxdomain.Template{}
	}
	respondJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	tpl := outboxdomain.NewTemplate(uuid.New(), user.ID, req.Name, req.Content)
	if err := h.templateRepo.Create(ctx, tpl); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create template", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tpl, err := h.templateRepo.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, outboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := UserFromContext(ctx)
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	tpl, err := h.templateRepo.GetByID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, outboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}

	tpl.Name = req.Name
	tpl.Content = req.Content
	tpl.UpdatedAt = time.Now().UTC()

	if err := h.templateRepo.Update(ctx, tpl); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update template", "error", err, "template_id", id)
		respondError(w, http.StatusInternalServerError, "failed to update template")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	if err := h.templateRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, outboxdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
