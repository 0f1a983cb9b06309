package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/metrics"
	"github.com/gdg-garage/conference-api/internal/models"
	"github.com/gdg-garage/conference-api/internal/notifier"
	"github.com/gdg-garage/conference-api/internal/wizard"
	"gorm.io/gorm"
)

type WizardHandler struct {
	db          *gorm.DB
	wizard      *wizard.Service
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewWizardHandler(db *gorm.DB, service *wizard.Service, registrationNotifier notifier.Notifier, authHandler *auth.AuthHandler) *WizardHandler {
	return &WizardHandler{db: db, wizard: service, notifier: registrationNotifier, authHandler: authHandler}
}

type RegistrationBody struct {
	Comment                string `json:"comment,omitempty" maxLength:"2000"`
	HasDietaryRestrictions bool   `json:"has_dietary_restrictions,omitempty"`
	DietaryDetails         string `json:"dietary_details,omitempty" maxLength:"200"`
	NeedsTransport         bool   `json:"needs_transport,omitempty"`
}

func (b RegistrationBody) input() wizard.DraftInput {
	return wizard.DraftInput{
		Comment:                b.Comment,
		HasDietaryRestrictions: b.HasDietaryRestrictions,
		DietaryDetails:         b.DietaryDetails,
		NeedsTransport:         b.NeedsTransport,
	}
}

type PersonBody struct {
	Name           string   `json:"name" minLength:"1" maxLength:"100"`
	Age            int      `json:"age" minimum:"0" maximum:"130"`
	ArrivalDate    string   `json:"arrival_date,omitempty" format:"date" doc:"Arrival date (YYYY-MM-DD)"`
	DepartureDate  string   `json:"departure_date,omitempty" format:"date" doc:"Departure date (YYYY-MM-DD)"`
	FoodPreference string   `json:"food_preference,omitempty" enum:"normal,vegetarian,lactose_free"`
	Services       []string `json:"services,omitempty" maxItems:"16" doc:"Instruments and services the person volunteers for"`
	Lodging        string   `json:"lodging,omitempty" enum:"self,host_family,dormitory,hotel,camping"`
}

func (b PersonBody) input() (wizard.PersonInput, error) {
	arrival, err := parseDate(b.ArrivalDate)
	if err != nil {
		return wizard.PersonInput{}, fieldError("arrival_date", err.Error(), b.ArrivalDate)
	}
	departure, err := parseDate(b.DepartureDate)
	if err != nil {
		return wizard.PersonInput{}, fieldError("departure_date", err.Error(), b.DepartureDate)
	}
	return wizard.PersonInput{
		Name:           b.Name,
		Age:            b.Age,
		ArrivalDate:    arrival,
		DepartureDate:  departure,
		FoodPreference: models.FoodPreference(b.FoodPreference),
		Services:       b.Services,
		Lodging:        models.Lodging(b.Lodging),
	}, nil
}

type StartRequest struct {
	Body struct {
		RegistrationBody
		Adults   int `json:"adults,omitempty" minimum:"0" maximum:"20" doc:"Number of adult rows to plan"`
		Children int `json:"children,omitempty" minimum:"0" maximum:"20" doc:"Number of child rows to plan"`
	}
}

type StartResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Registration RegistrationView `json:"registration"`
		Rows         []wizard.Row     `json:"rows"`
	}
}

func (h *WizardHandler) HandleStart(ctx context.Context, input *StartRequest) (*StartResponse, error) {
	_, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	reg, err := h.wizard.Start(ctx, sess, input.Body.RegistrationBody.input())
	if err != nil {
		return nil, wizardError(err)
	}

	sess.DraftID = reg.ID
	cookie, err := h.authHandler.SessionCookie(sess)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	reg, err = h.wizard.Overview(ctx, sess)
	if err != nil {
		return nil, wizardError(err)
	}

	res := &StartResponse{SetCookie: cookie}
	res.Body.Registration = registrationView(reg)
	res.Body.Rows = wizard.PlanRows(input.Body.Adults, input.Body.Children)
	return res, nil
}

type AddPersonRequest struct {
	Body PersonBody
}

type PersonResponse struct {
	Body PersonView
}

func (h *WizardHandler) HandleAddAdult(ctx context.Context, input *AddPersonRequest) (*PersonResponse, error) {
	_, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}

	adult, err := h.wizard.AddAdult(ctx, sess, in)
	if err != nil {
		return nil, wizardError(err)
	}
	return &PersonResponse{Body: adultView(adult)}, nil
}

func (h *WizardHandler) HandleAddChild(ctx context.Context, input *AddPersonRequest) (*PersonResponse, error) {
	_, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}

	child, err := h.wizard.AddChild(ctx, sess, in)
	if err != nil {
		return nil, wizardError(err)
	}
	return &PersonResponse{Body: childView(child)}, nil
}

type RegistrationResponse struct {
	Body RegistrationView
}

func (h *WizardHandler) HandleOverview(ctx context.Context, _ *struct{}) (*RegistrationResponse, error) {
	_, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	reg, err := h.wizard.Overview(ctx, sess)
	if err != nil {
		return nil, wizardError(err)
	}
	return &RegistrationResponse{Body: registrationView(reg)}, nil
}

type FinalizeRequest struct {
	Body struct {
		PrivacyAccepted bool `json:"privacy_accepted" doc:"The participant accepts the privacy policy"`
	}
}

type FinalizeResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      RegistrationView
}

func (h *WizardHandler) HandleFinalize(ctx context.Context, input *FinalizeRequest) (*FinalizeResponse, error) {
	participant, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	reg, finalized, err := h.wizard.Finalize(ctx, sess, input.Body.PrivacyAccepted)
	if err != nil {
		return nil, wizardError(err)
	}

	sess.DraftID = 0
	cookie, err := h.authHandler.SessionCookie(sess)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	if finalized {
		metrics.RegistrationsFinalized.Inc()
		log.Printf("Registration %d finalized by participant %d", reg.ID, participant.ID)
		if h.notifier != nil {
			if err := h.notifier.NotifyRegistration(participant, reg); err != nil {
				log.Printf("Failed to send notification: %v", err)
			}
		}
	}

	return &FinalizeResponse{SetCookie: cookie, Body: registrationView(reg)}, nil
}

type RegistrationListResponse struct {
	Body []RegistrationView
}

func (h *WizardHandler) HandleList(ctx context.Context, _ *struct{}) (*RegistrationListResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	regs, err := h.wizard.List(ctx, participant.ID)
	if err != nil {
		return nil, wizardError(err)
	}

	res := &RegistrationListResponse{Body: make([]RegistrationView, 0, len(regs))}
	for _, r := range regs {
		res.Body = append(res.Body, registrationView(r))
	}
	return res, nil
}

type IDInput struct {
	ID uint `path:"id"`
}

func (h *WizardHandler) HandleGet(ctx context.Context, input *IDInput) (*RegistrationResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	reg, err := h.wizard.Get(ctx, participant.ID, input.ID)
	if err != nil {
		return nil, wizardError(err)
	}
	return &RegistrationResponse{Body: registrationView(reg)}, nil
}

type UpdateRegistrationRequest struct {
	IDInput
	Body RegistrationBody
}

func (h *WizardHandler) HandleUpdate(ctx context.Context, input *UpdateRegistrationRequest) (*RegistrationResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	reg, err := h.wizard.UpdateRegistration(ctx, participant.ID, input.ID, input.Body.input())
	if err != nil {
		return nil, wizardError(err)
	}
	return &RegistrationResponse{Body: registrationView(reg)}, nil
}

type DeleteRegistrationResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// HandleDelete removes a registration; deleting the draft in progress also
// clears it from the session.
func (h *WizardHandler) HandleDelete(ctx context.Context, input *IDInput) (*DeleteRegistrationResponse, error) {
	_, sess, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	if err := h.wizard.DeleteRegistration(ctx, sess.ParticipantID, input.ID); err != nil {
		return nil, wizardError(err)
	}

	if sess.DraftID == input.ID {
		sess.DraftID = 0
	}
	cookie, err := h.authHandler.SessionCookie(sess)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	return &DeleteRegistrationResponse{SetCookie: cookie}, nil
}

type HistoryResponse struct {
	Body []HistoryView
}

func (h *WizardHandler) HandleHistory(ctx context.Context, input *IDInput) (*HistoryResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}

	history, err := h.wizard.History(ctx, participant.ID, input.ID)
	if err != nil {
		return nil, wizardError(err)
	}

	res := &HistoryResponse{Body: make([]HistoryView, 0, len(history))}
	for _, entry := range history {
		res.Body = append(res.Body, historyView(entry))
	}
	return res, nil
}

type UpdatePersonRequest struct {
	IDInput
	Body PersonBody
}

func (h *WizardHandler) HandleUpdateAdult(ctx context.Context, input *UpdatePersonRequest) (*PersonResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}

	adult, err := h.wizard.UpdateAdult(ctx, participant.ID, input.ID, in)
	if err != nil {
		return nil, wizardError(err)
	}
	return &PersonResponse{Body: adultView(adult)}, nil
}

func (h *WizardHandler) HandleDeleteAdult(ctx context.Context, input *IDInput) (*struct{}, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	if err := h.wizard.DeleteAdult(ctx, participant.ID, input.ID); err != nil {
		return nil, wizardError(err)
	}
	return nil, nil
}

func (h *WizardHandler) HandleUpdateChild(ctx context.Context, input *UpdatePersonRequest) (*PersonResponse, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	in, err := input.Body.input()
	if err != nil {
		return nil, err
	}

	child, err := h.wizard.UpdateChild(ctx, participant.ID, input.ID, in)
	if err != nil {
		return nil, wizardError(err)
	}
	return &PersonResponse{Body: childView(child)}, nil
}

func (h *WizardHandler) HandleDeleteChild(ctx context.Context, input *IDInput) (*struct{}, error) {
	participant, _, err := currentParticipant(ctx, h.db, h.authHandler)
	if err != nil {
		return nil, err
	}
	if err := h.wizard.DeleteChild(ctx, participant.ID, input.ID); err != nil {
		return nil, wizardError(err)
	}
	return nil, nil
}
