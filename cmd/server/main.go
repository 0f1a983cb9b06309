package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/database"
	"github.com/gdg-garage/conference-api/internal/handlers"
	"github.com/gdg-garage/conference-api/internal/notifier"
	"github.com/gdg-garage/conference-api/internal/wizard"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Notifications are optional, a missing bot token only disables them.
	var registrationNotifier notifier.Notifier
	discordNotifier, err := notifier.NewDiscordNotifier(cfg)
	if err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	} else {
		registrationNotifier = discordNotifier
	}
	mailer := notifier.NewMailer(cfg)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	h := handlers.Handlers{
		Auth:          authHandler,
		Participants:  handlers.NewParticipantHandler(db, cfg, authHandler),
		PasswordReset: handlers.NewPasswordResetHandler(db, cfg, authHandler, mailer),
		Wizard:        handlers.NewWizardHandler(db, wizard.NewService(db), registrationNotifier, authHandler),
		Dashboard:     handlers.NewDashboardHandler(db, authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, h)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
