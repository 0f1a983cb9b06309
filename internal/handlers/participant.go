package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/metrics"
	"github.com/gdg-garage/conference-api/internal/models"
	"gorm.io/gorm"
)

type ParticipantHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewParticipantHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *ParticipantHandler {
	return &ParticipantHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type ContactFields struct {
	Phone         string `json:"phone,omitempty" maxLength:"20" doc:"Phone number"`
	Street        string `json:"street,omitempty" maxLength:"100"`
	StreetExtra   string `json:"street_extra,omitempty" maxLength:"100"`
	PostalCode    string `json:"postal_code,omitempty" maxLength:"10"`
	City          string `json:"city,omitempty" maxLength:"100"`
	FamilyMembers int    `json:"family_members,omitempty" minimum:"1" maximum:"30" doc:"Number of people in the family, defaults to 1"`
}

func (c ContactFields) apply(p *models.Participant) {
	p.Phone = strings.TrimSpace(c.Phone)
	p.Street = strings.TrimSpace(c.Street)
	p.StreetExtra = strings.TrimSpace(c.StreetExtra)
	p.PostalCode = strings.TrimSpace(c.PostalCode)
	p.City = strings.TrimSpace(c.City)
	p.FamilyMembers = c.FamilyMembers
	if p.FamilyMembers < 1 {
		p.FamilyMembers = 1
	}
}

type RegisterRequest struct {
	Body struct {
		FirstName       string `json:"first_name" minLength:"1" maxLength:"100"`
		LastName        string `json:"last_name" minLength:"1" maxLength:"100"`
		Email           string `json:"email" format:"email" maxLength:"254"`
		Password        string `json:"password" doc:"At least 8 characters with a letter and a digit"`
		PasswordConfirm string `json:"password_confirm"`
		ContactFields
	}
}

type SessionResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      ParticipantView
}

func (h *ParticipantHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*SessionResponse, error) {
	email := models.NormalizeEmail(input.Body.Email)

	var details []error
	if err := auth.ValidatePassword(input.Body.Password, input.Body.PasswordConfirm); err != nil {
		field := "password"
		if errors.Is(err, auth.ErrPasswordMismatch) {
			field = "password_confirm"
		}
		details = append(details, &huma.ErrorDetail{Location: "body." + field, Message: err.Error()})
	}

	var existing int64
	if err := h.db.WithContext(ctx).Model(&models.Participant{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	if existing > 0 {
		details = append(details, emailTakenDetail(email))
	}
	if len(details) > 0 {
		return nil, huma.Error422UnprocessableEntity("Validation failed", details...)
	}

	participant := models.Participant{
		FirstName: strings.TrimSpace(input.Body.FirstName),
		LastName:  strings.TrimSpace(input.Body.LastName),
		Email:     email,
		IsStaff:   h.cfg.IsStaffEmail(email),
	}
	input.Body.ContactFields.apply(&participant)
	if err := participant.SetPassword(input.Body.Password); err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	if err := h.db.WithContext(ctx).Create(&participant).Error; err != nil {
		// A concurrent sign-up with the same email got there first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, huma.Error422UnprocessableEntity("Validation failed", emailTakenDetail(email))
		}
		return nil, huma.Error500InternalServerError("Failed to create participant")
	}
	metrics.ParticipantsRegistered.Inc()
	log.Printf("Participant %d registered", participant.ID)

	return h.sessionResponse(participant)
}

func emailTakenDetail(email string) *huma.ErrorDetail {
	return &huma.ErrorDetail{
		Location: "body.email",
		Message:  "A participant with this email already exists",
		Value:    email,
	}
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" maxLength:"254"`
		Password string `json:"password"`
	}
}

func (h *ParticipantHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	var participant models.Participant
	err := h.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(input.Body.Email)).First(&participant).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error500InternalServerError("Database error")
	}
	if err != nil || !participant.CheckPassword(input.Body.Password) {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}

	if !participant.IsStaff && h.cfg.IsStaffEmail(participant.Email) {
		participant.IsStaff = true
		if err := h.db.WithContext(ctx).Model(&participant).Update("is_staff", true).Error; err != nil {
			log.Printf("Failed to promote participant %d to staff: %v", participant.ID, err)
		}
	}

	return h.sessionResponse(participant)
}

func (h *ParticipantHandler) sessionResponse(participant models.Participant) (*SessionResponse, error) {
	cookie, err := h.authHandler.SessionCookie(auth.Session{ParticipantID: participant.ID})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	return &SessionResponse{SetCookie: cookie, Body: participantView(participant)}, nil
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

func (h *ParticipantHandler) HandleLogout(ctx context.Context, _ *struct{}) (*LogoutResponse, error) {
	return &LogoutResponse{SetCookie: auth.ClearCookie()}, nil
}

type ProfileResponse struct {
	Body ParticipantView
}

func (h *ParticipantHandler) HandleMe(ctx context.Context, _ *struct{}) (*ProfileResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{Body: participantView(participant)}, nil
}

type UpdateProfileRequest struct {
	Body struct {
		FirstName string `json:"first_name" minLength:"1" maxLength:"100"`
		LastName  string `json:"last_name" minLength:"1" maxLength:"100"`
		ContactFields
	}
}

func (h *ParticipantHandler) HandleUpdateMe(ctx context.Context, input *UpdateProfileRequest) (*ProfileResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	participant.FirstName = strings.TrimSpace(input.Body.FirstName)
	participant.LastName = strings.TrimSpace(input.Body.LastName)
	input.Body.ContactFields.apply(&participant)

	err = h.db.WithContext(ctx).Model(&participant).
		Select("FirstName", "LastName", "Phone", "Street", "StreetExtra", "PostalCode", "City", "FamilyMembers").
		Updates(&participant).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to update profile")
	}

	return &ProfileResponse{Body: participantView(participant)}, nil
}
