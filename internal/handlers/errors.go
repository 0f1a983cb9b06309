package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/models"
	"github.com/gdg-garage/conference-api/internal/wizard"
	"gorm.io/gorm"
)

// fieldError is a 422 for a single request body field.
func fieldError(field, message string, value any) error {
	return huma.Error422UnprocessableEntity("Validation failed", &huma.ErrorDetail{
		Location: "body." + field,
		Message:  message,
		Value:    value,
	})
}

func wizardError(err error) error {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		return fieldError(verr.Field, verr.Message, nil)
	case errors.Is(err, wizard.ErrNoDraft):
		return huma.Error404NotFound("No registration in progress, start one first")
	case errors.Is(err, wizard.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, wizard.ErrPrivacyNotAccepted):
		return fieldError("privacy_accepted", "The privacy policy must be accepted", false)
	default:
		log.Printf("Registration error: %v", err)
		return huma.Error500InternalServerError("Failed to process registration")
	}
}

// currentParticipant resolves the session and loads its participant. A
// session whose participant is gone is treated like no session.
func currentParticipant(ctx context.Context, db *gorm.DB, authHandler *auth.AuthHandler) (models.Participant, auth.Session, error) {
	var participant models.Participant
	sess, err := auth.SessionFromContext(ctx, authHandler.LoginPath())
	if err != nil {
		return participant, sess, err
	}

	err = db.WithContext(ctx).First(&participant, sess.ParticipantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return participant, sess, auth.LoginRedirect(authHandler.LoginPath())
	} else if err != nil {
		return participant, sess, huma.Error500InternalServerError("Database error")
	}
	return participant, sess, nil
}
