package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth          *auth.AuthHandler
	Participants  *ParticipantHandler
	PasswordReset *PasswordResetHandler
	Wizard        *WizardHandler
	Dashboard     *DashboardHandler
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("Conference Registration API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, humaConfig)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	if h.Auth.DiscordEnabled() {
		r.Get("/auth/discord/login", h.Auth.HandleDiscordLogin)
		r.Get("/auth/discord/callback", h.Auth.HandleDiscordCallback)
	}

	// Account routes
	huma.Post(api, "/auth/register", h.Participants.HandleRegister, status(http.StatusCreated))
	huma.Post(api, "/auth/login", h.Participants.HandleLogin)
	huma.Post(api, "/auth/logout", h.Participants.HandleLogout, status(http.StatusNoContent))

	// Password reset
	huma.Post(api, "/auth/password-reset", h.PasswordReset.HandleRequest, status(http.StatusAccepted))
	huma.Get(api, "/auth/password-reset/done", h.PasswordReset.HandleDone)
	huma.Get(api, "/auth/password-reset/confirm/{token}", h.PasswordReset.HandleConfirm)
	huma.Post(api, "/auth/password-reset/confirm/{token}", h.PasswordReset.HandleSetPassword)
	huma.Get(api, "/auth/password-reset/complete", h.PasswordReset.HandleComplete)

	// Protected routes
	protected := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
		o.Middlewares = append(o.Middlewares, h.Auth.RequireSession(api))
	}

	huma.Get(api, "/me", h.Participants.HandleMe, protected)
	huma.Put(api, "/me", h.Participants.HandleUpdateMe, protected)

	huma.Post(api, "/registrations/draft", h.Wizard.HandleStart, protected)
	huma.Get(api, "/registrations/draft", h.Wizard.HandleOverview, protected)
	huma.Post(api, "/registrations/draft/adults", h.Wizard.HandleAddAdult, protected, status(http.StatusCreated))
	huma.Post(api, "/registrations/draft/children", h.Wizard.HandleAddChild, protected, status(http.StatusCreated))
	huma.Post(api, "/registrations/draft/finalize", h.Wizard.HandleFinalize, protected)

	huma.Get(api, "/registrations", h.Wizard.HandleList, protected)
	huma.Get(api, "/registrations/{id}", h.Wizard.HandleGet, protected)
	huma.Put(api, "/registrations/{id}", h.Wizard.HandleUpdate, protected)
	huma.Delete(api, "/registrations/{id}", h.Wizard.HandleDelete, protected)
	huma.Get(api, "/registrations/{id}/history", h.Wizard.HandleHistory, protected)

	huma.Put(api, "/adults/{id}", h.Wizard.HandleUpdateAdult, protected)
	huma.Delete(api, "/adults/{id}", h.Wizard.HandleDeleteAdult, protected)
	huma.Put(api, "/children/{id}", h.Wizard.HandleUpdateChild, protected)
	huma.Delete(api, "/children/{id}", h.Wizard.HandleDeleteChild, protected)

	huma.Get(api, "/dashboard", h.Dashboard.HandleDashboard, protected)

	return api
}

func status(code int) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.DefaultStatus = code
	}
}
