package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	userapp "github.com/ozmsg/gateway/internal/user_service/app"
)

// RouterDeps bundles the handlers mounted by NewRouter.
type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Contacts  *ContactHandler
	Rules     *RuleHandler
	Templates *TemplateHandler
	Messages  *MessageHandler
	Webhooks  *WebhookHandler
}

// NewRouter assembles the chi router: public routes (login, inbound
// webhook, health), an authenticated group, and an admin-only group.
func NewRouter(deps RouterDeps, authService *userapp.AuthService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		deps.Auth.RegisterRoutes(api)
		deps.Webhooks.RegisterPublicRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(AuthMiddleware(authService, logger))

			deps.Contacts.RegisterRoutes(authed)
			deps.Rules.RegisterRoutes(authed)
			deps.Templates.RegisterRoutes(authed)
			deps.Messages.RegisterRoutes(authed)
			deps.Webhooks.RegisterRoutes(authed)

			authed.Group(func(admin chi.Router) {
				admin.Use(RequireAdmin)
				deps.Auth.RegisterAdminRoutes(admin)
				deps.Users.RegisterRoutes(admin)
			})
		})
	})

	return r
}

// NewValidator builds the request validator shared by all handlers.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
