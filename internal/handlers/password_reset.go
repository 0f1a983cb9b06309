package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/metrics"
	"github.com/gdg-garage/conference-api/internal/models"
	"github.com/gdg-garage/conference-api/internal/notifier"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type PasswordResetHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	mailer      notifier.Mailer
	limiter     *rate.Limiter
	frontendURL string
	now         func() time.Time
}

func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler, mailer notifier.Mailer) *PasswordResetHandler {
	perMinute := max(cfg.ResetRatePerMinute, 1)
	burst := max(cfg.ResetRateBurst, 1)
	return &PasswordResetHandler{
		db:          db,
		authHandler: authHandler,
		mailer:      mailer,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		now:         time.Now,
	}
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func message(text string) *MessageResponse {
	res := &MessageResponse{}
	res.Body.Message = text
	return res
}

type PasswordResetRequest struct {
	Body struct {
		Email string `json:"email" format:"email" maxLength:"254"`
	}
}

// HandleRequest answers the same way whether or not the email is known.
func (h *PasswordResetHandler) HandleRequest(ctx context.Context, input *PasswordResetRequest) (*MessageResponse, error) {
	if !h.limiter.Allow() {
		metrics.PasswordResetRequests.WithLabelValues("throttled").Inc()
		return nil, huma.Error429TooManyRequests("Too many password reset requests, try again later")
	}

	res := message("If the address is registered, a reset link has been sent.")

	var participant models.Participant
	err := h.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(input.Body.Email)).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.PasswordResetRequests.WithLabelValues("unknown_email").Inc()
		return res, nil
	} else if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}

	token, err := h.authHandler.GenerateResetToken(participant.Email, h.now())
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate reset token")
	}

	link := h.frontendURL + "/password-reset/confirm/" + token
	if err := h.mailer.SendPasswordReset(ctx, participant.Email, link); err != nil {
		log.Printf("Failed to send password reset mail to participant %d: %v", participant.ID, err)
		metrics.PasswordResetRequests.WithLabelValues("mail_failed").Inc()
		return res, nil
	}

	metrics.PasswordResetRequests.WithLabelValues("sent").Inc()
	return res, nil
}

func (h *PasswordResetHandler) HandleDone(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	return message("Check your inbox for the password reset link. It is valid for one hour."), nil
}

func (h *PasswordResetHandler) HandleComplete(ctx context.Context, _ *struct{}) (*MessageResponse, error) {
	return message("Your password has been changed. You can now log in."), nil
}

type ResetTokenInput struct {
	Token string `path:"token" maxLength:"1024"`
}

type ResetTokenResponse struct {
	Body struct {
		Email string `json:"email"`
	}
}

// participantForToken returns 404 for invalid, expired or orphaned tokens.
func (h *PasswordResetHandler) participantForToken(ctx context.Context, token string) (models.Participant, error) {
	var participant models.Participant
	email, err := h.authHandler.VerifyResetToken(token, h.now())
	if err != nil {
		return participant, huma.Error404NotFound("Invalid or expired reset link")
	}

	err = h.db.WithContext(ctx).Where("email = ?", email).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return participant, huma.Error404NotFound("Invalid or expired reset link")
	} else if err != nil {
		return participant, huma.Error500InternalServerError("Database error")
	}
	return participant, nil
}

func (h *PasswordResetHandler) HandleConfirm(ctx context.Context, input *ResetTokenInput) (*ResetTokenResponse, error) {
	participant, err := h.participantForToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	res := &ResetTokenResponse{}
	res.Body.Email = participant.Email
	return res, nil
}

type SetPasswordRequest struct {
	ResetTokenInput
	Body struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
}

func (h *PasswordResetHandler) HandleSetPassword(ctx context.Context, input *SetPasswordRequest) (*MessageResponse, error) {
	participant, err := h.participantForToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if err := auth.ValidatePassword(input.Body.Password, input.Body.PasswordConfirm); err != nil {
		field := "password"
		if errors.Is(err, auth.ErrPasswordMismatch) {
			field = "password_confirm"
		}
		return nil, fieldError(field, err.Error(), nil)
	}

	if err := participant.SetPassword(input.Body.Password); err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}
	if err := h.db.WithContext(ctx).Model(&participant).Update("password_hash", participant.PasswordHash).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update password")
	}
	log.Printf("Password reset for participant %d", participant.ID)

	return message("Password updated"), nil
}
