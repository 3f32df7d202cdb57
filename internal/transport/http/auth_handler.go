package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	userapp "github.com/ozmsg/gateway/internal/user_service/app"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

// AuthHandler serves login and admin user registration.
type AuthHandler struct {
	auth     *userapp.AuthService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *userapp.AuthService, logger *slog.Logger, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		logger:   logger.With("handler", "auth"),
		validate: validate,
	}
}

// RegisterRoutes mounts public auth routes. Registration is mounted
// separately behind admin middleware by the router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// RegisterAdminRoutes mounts admin-only auth routes.
func (h *AuthHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	token, _, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userdomain.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.ErrorContext(ctx, "Login failed", "error", err, "username", req.Username)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	role := userdomain.Role(req.Role)
	if req.Role == "" {
		role = userdomain.RoleUser
	}

	user, err := h.auth.Register(ctx, req.Username, req.Password, req.PersonalMobile, role, req.Credits)
	if err != nil {
		if errors.Is(err, userdomain.ErrDuplicateEntry) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		h.logger.ErrorContext(ctx, "Registration failed", "error", err, "username", req.Username)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}
