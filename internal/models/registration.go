package models

import (
	"time"

	"gorm.io/gorm"
)

type FoodPreference string

const (
	FoodNormal      FoodPreference = "normal"
	FoodVegetarian  FoodPreference = "vegetarian"
	FoodLactoseFree FoodPreference = "lactose_free"
)

type Lodging string

const (
	LodgingSelf       Lodging = "self"
	LodgingHostFamily Lodging = "host_family"
	LodgingDormitory  Lodging = "dormitory"
	LodgingHotel      Lodging = "hotel"
	LodgingCamping    Lodging = "camping"
)

type RegistrationFields struct {
	Comment                string `json:"comment"`
	HasDietaryRestrictions bool   `json:"has_dietary_restrictions"`
	DietaryDetails         string `json:"dietary_details"`
	NeedsTransport         bool   `json:"needs_transport"`
	PrivacyAccepted        bool   `json:"privacy_accepted"`
}

// Registration is a draft until FinalizedAt is set.
type Registration struct {
	gorm.Model
	ParticipantID      uint `json:"participant_id" gorm:"index"`
	RegistrationFields `gorm:"embedded"`
	FinalizedAt        *time.Time `json:"finalized_at"`
	Adults             []Adult    `json:"adults" gorm:"constraint:OnDelete:CASCADE"`
	Children           []Child    `json:"children" gorm:"constraint:OnDelete:CASCADE"`
}

func (r Registration) IsDraft() bool {
	return r.FinalizedAt == nil
}

// Attendance holds the per-person details shared by adults and children.
type Attendance struct {
	Name           string         `json:"name"`
	Age            int            `json:"age"`
	ArrivalDate    *time.Time     `json:"arrival_date"`
	DepartureDate  *time.Time     `json:"departure_date"`
	FoodPreference FoodPreference `json:"food_preference"`
	Services       ServiceSet     `json:"services" gorm:"type:varchar(200)"`
	Lodging        Lodging        `json:"lodging"`
}

type Adult struct {
	gorm.Model
	RegistrationID uint `json:"registration_id" gorm:"index"`
	Attendance     `gorm:"embedded"`
}

type Child struct {
	gorm.Model
	RegistrationID uint `json:"registration_id" gorm:"index"`
	Attendance     `gorm:"embedded"`
}

func (a *Adult) Details() *Attendance { return &a.Attendance }
func (a *Adult) Owner() uint          { return a.RegistrationID }
func (a *Adult) SetOwner(id uint)     { a.RegistrationID = id }

func (c *Child) Details() *Attendance { return &c.Attendance }
func (c *Child) Owner() uint          { return c.RegistrationID }
func (c *Child) SetOwner(id uint)     { c.RegistrationID = id }
