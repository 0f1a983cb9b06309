package handlers

import (
	"fmt"
	"time"

	"github.com/gdg-garage/conference-api/internal/models"
)

const dateLayout = "2006-01-02"

type ParticipantView struct {
	ID            uint   `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	StreetExtra   string `json:"street_extra"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	FamilyMembers int    `json:"family_members"`
	IsStaff       bool   `json:"is_staff"`
	DiscordLinked bool   `json:"discord_linked"`
}

func participantView(p models.Participant) ParticipantView {
	return ParticipantView{
		ID:            p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Phone:         p.Phone,
		Street:        p.Street,
		StreetExtra:   p.StreetExtra,
		PostalCode:    p.PostalCode,
		City:          p.City,
		FamilyMembers: p.FamilyMembers,
		IsStaff:       p.IsStaff,
		DiscordLinked: p.DiscordID != nil,
	}
}

type PersonView struct {
	ID             uint     `json:"id"`
	RegistrationID uint     `json:"registration_id"`
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	ArrivalDate    string   `json:"arrival_date,omitempty"`
	DepartureDate  string   `json:"departure_date,omitempty"`
	FoodPreference string   `json:"food_preference"`
	Services       []string `json:"services"`
	Lodging        string   `json:"lodging"`
}

func personView(id, registrationID uint, a models.Attendance) PersonView {
	services := make([]string, 0, len(a.Services))
	for _, s := range a.Services.Sorted() {
		services = append(services, string(s))
	}
	return PersonView{
		ID:             id,
		RegistrationID: registrationID,
		Name:           a.Name,
		Age:            a.Age,
		ArrivalDate:    formatDate(a.ArrivalDate),
		DepartureDate:  formatDate(a.DepartureDate),
		FoodPreference: string(a.FoodPreference),
		Services:       services,
		Lodging:        string(a.Lodging),
	}
}

func adultView(a models.Adult) PersonView {
	return personView(a.ID, a.RegistrationID, a.Attendance)
}

func childView(c models.Child) PersonView {
	return personView(c.ID, c.RegistrationID, c.Attendance)
}

type RegistrationView struct {
	ID                     uint         `json:"id"`
	Draft                  bool         `json:"draft"`
	Comment                string       `json:"comment"`
	HasDietaryRestrictions bool         `json:"has_dietary_restrictions"`
	DietaryDetails         string       `json:"dietary_details"`
	NeedsTransport         bool         `json:"needs_transport"`
	PrivacyAccepted        bool         `json:"privacy_accepted"`
	CreatedAt              time.Time    `json:"created_at"`
	FinalizedAt            *time.Time   `json:"finalized_at,omitempty"`
	Adults                 []PersonView `json:"adults"`
	Children               []PersonView `json:"children"`
}

func registrationView(r models.Registration) RegistrationView {
	view := RegistrationView{
		ID:                     r.ID,
		Draft:                  r.IsDraft(),
		Comment:                r.Comment,
		HasDietaryRestrictions: r.HasDietaryRestrictions,
		DietaryDetails:         r.DietaryDetails,
		NeedsTransport:         r.NeedsTransport,
		PrivacyAccepted:        r.PrivacyAccepted,
		CreatedAt:              r.CreatedAt,
		FinalizedAt:            r.FinalizedAt,
		Adults:                 make([]PersonView, 0, len(r.Adults)),
		Children:               make([]PersonView, 0, len(r.Children)),
	}
	for _, a := range r.Adults {
		view.Adults = append(view.Adults, adultView(a))
	}
	for _, c := range r.Children {
		view.Children = append(view.Children, childView(c))
	}
	return view
}

type HistoryView struct {
	ID                     uint      `json:"id"`
	Action                 string    `json:"action"`
	CreatedAt              time.Time `json:"created_at"`
	Adults                 int       `json:"adults"`
	Children               int       `json:"children"`
	Comment                string    `json:"comment"`
	HasDietaryRestrictions bool      `json:"has_dietary_restrictions"`
	DietaryDetails         string    `json:"dietary_details"`
	NeedsTransport         bool      `json:"needs_transport"`
}

func historyView(h models.RegistrationHistory) HistoryView {
	return HistoryView{
		ID:                     h.ID,
		Action:                 h.Action,
		CreatedAt:              h.CreatedAt,
		Adults:                 h.Adults,
		Children:               h.Children,
		Comment:                h.Comment,
		HasDietaryRestrictions: h.HasDietaryRestrictions,
		DietaryDetails:         h.DietaryDetails,
		NeedsTransport:         h.NeedsTransport,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate accepts an empty string as "no date".
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}
