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

	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// UserHandler serves the admin user management surface.
type UserHandler struct {
	userRepo userdomain.UserRepository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userRepo userdomain.UserRepository, logger *slog.Logger, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		logger:   logger.With("handler", "users"),
		validate: validate,
	}
}

// RegisterRoutes mounts admin-only user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	offset, limit := paginationParams(r, 50)
	users, err := h.userRepo.List(r.Context(), offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list users", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if req.PersonalMobile != nil {
		user.PersonalMobile = *req.PersonalMobile
	}
	if req.Role != nil {
		user.Role = userdomain.Role(*req.Role)
	}
	if req.Credits != nil {
		user.Credits = *req.Credits
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.userRepo.Update(ctx, user); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update user", "error", err, "user_id", id)
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
