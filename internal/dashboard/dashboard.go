// Package dashboard folds participants and their registrations into the
// staff report: headcounts, Kurtaxe fee groups and preference tallies.
package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/gdg-garage/conference-api/internal/models"
)

// Bracket is an age range charged a Kurtaxe rate per person and night.
// MaxAge < 0 means no upper bound.
type Bracket struct {
	Name   string
	MinAge int
	MaxAge int
	Rate   float64
}

func (b Bracket) Contains(age int) bool {
	return age >= b.MinAge && (b.MaxAge < 0 || age <= b.MaxAge)
}

var DefaultBrackets = []Bracket{
	{Name: "adults", MinAge: 18, MaxAge: -1, Rate: 1.8},
	{Name: "youth", MinAge: 10, MaxAge: 17, Rate: 1.0},
	{Name: "kids", MinAge: 0, MaxAge: 9, Rate: 0},
}

type FeeGroup struct {
	Name   string  `json:"name"`
	MinAge int     `json:"min_age"`
	MaxAge int     `json:"max_age"`
	Rate   float64 `json:"rate"`
	People int     `json:"people"`
	Nights int     `json:"nights"`
	Fee    float64 `json:"fee"`
}

type Attendee struct {
	ParticipantID  uint   `json:"participant_id"`
	RegistrationID uint   `json:"registration_id"`
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Nights         int    `json:"nights"`
	Bracket        string `json:"bracket"`
}

// Note is a free-text entry of a registration shown to staff.
type Note struct {
	ParticipantID  uint   `json:"participant_id"`
	RegistrationID uint   `json:"registration_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Text           string `json:"text"`
}

type Report struct {
	TotalParticipants int `json:"total_participants"`
	TotalPeople       int `json:"total_people"`
	TotalAdults       int `json:"total_adults"`
	TotalChildren     int `json:"total_children"`
	WithEmail         int `json:"with_email"`
	NeedsTransport    int `json:"needs_transport"`

	Attendees []Attendee `json:"attendees"`
	FeeGroups []FeeGroup `json:"fee_groups"`
	TotalFee  float64    `json:"total_fee"`

	Food        map[string]int `json:"food"`
	Lodging     map[string]int `json:"lodging"`
	Instruments map[string]int `json:"instruments"`
	Services    map[string]int `json:"services"`

	Comments            []Note `json:"comments"`
	DietaryRestrictions []Note `json:"dietary_restrictions"`
}

// Nights is the number of calendar days between arrival and departure, 0
// when either date is unknown.
func Nights(arrival, departure *time.Time) int {
	if arrival == nil || departure == nil {
		return 0
	}
	a := time.Date(arrival.Year(), arrival.Month(), arrival.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(a).Hours() / 24)
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Fee is people × rate × nights rounded to cents.
func Fee(people int, rate float64, nights int) float64 {
	return Round2(float64(people) * rate * float64(nights))
}

func Build(participants []models.Participant) Report {
	return BuildWith(participants, DefaultBrackets)
}

// BuildWith aggregates participants using the given fee brackets. The first
// bracket containing an attendee's age wins; attendees outside every bracket
// are listed but not charged.
func BuildWith(participants []models.Participant, brackets []Bracket) Report {
	report := Report{
		Attendees:           []Attendee{},
		FeeGroups:           make([]FeeGroup, len(brackets)),
		Food:                map[string]int{},
		Lodging:             map[string]int{},
		Instruments:         map[string]int{},
		Services:            map[string]int{},
		Comments:            []Note{},
		DietaryRestrictions: []Note{},
	}
	for i, b := range brackets {
		report.FeeGroups[i] = FeeGroup{Name: b.Name, MinAge: b.MinAge, MaxAge: b.MaxAge, Rate: b.Rate}
	}

	for _, p := range participants {
		report.TotalParticipants++
		report.TotalPeople += p.FamilyMembers
		if strings.TrimSpace(p.Email) != "" {
			report.WithEmail++
		}

		for _, reg := range p.Registrations {
			if reg.NeedsTransport {
				report.NeedsTransport++
			}
			if text := strings.TrimSpace(reg.Comment); text != "" {
				report.Comments = append(report.Comments, note(p, reg, text))
			}
			if reg.HasDietaryRestrictions {
				report.DietaryRestrictions = append(report.DietaryRestrictions, note(p, reg, strings.TrimSpace(reg.DietaryDetails)))
			}

			for _, a := range reg.Adults {
				report.TotalAdults++
				report.addAttendee(p.ID, reg.ID, "adult", a.Attendance, brackets)
			}
			for _, c := range reg.Children {
				report.TotalChildren++
				report.addAttendee(p.ID, reg.ID, "child", c.Attendance, brackets)
			}
		}
	}

	var total float64
	for i := range report.FeeGroups {
		g := &report.FeeGroups[i]
		g.Fee = Fee(g.People, g.Rate, g.Nights)
		total += g.Fee
	}
	report.TotalFee = Round2(total)

	return report
}

func (r *Report) addAttendee(participantID, registrationID uint, kind string, a models.Attendance, brackets []Bracket) {
	nights := Nights(a.ArrivalDate, a.DepartureDate)
	attendee := Attendee{
		ParticipantID:  participantID,
		RegistrationID: registrationID,
		Kind:           kind,
		Name:           a.Name,
		Age:            a.Age,
		Nights:         nights,
	}
	for i, b := range brackets {
		if b.Contains(a.Age) {
			attendee.Bracket = b.Name
			r.FeeGroups[i].People++
			r.FeeGroups[i].Nights += nights
			break
		}
	}
	r.Attendees = append(r.Attendees, attendee)

	if a.FoodPreference != "" {
		r.Food[string(a.FoodPreference)]++
	}
	if a.Lodging != "" {
		r.Lodging[string(a.Lodging)]++
	}
	for _, svc := range a.Services.Sorted() {
		if svc.IsInstrument() {
			r.Instruments[string(svc)]++
		} else {
			r.Services[string(svc)]++
		}
	}
}

func note(p models.Participant, reg models.Registration, text string) Note {
	return Note{
		ParticipantID:  p.ID,
		RegistrationID: reg.ID,
		Name:           p.FullName(),
		Email:          p.Email,
		Text:           text,
	}
}
