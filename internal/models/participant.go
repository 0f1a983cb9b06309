package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Participant struct {
	gorm.Model
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Email         string         `json:"email" gorm:"uniqueIndex"`
	PasswordHash  string         `json:"-"`
	Phone         string         `json:"phone"`
	Street        string         `json:"street"`
	StreetExtra   string         `json:"street_extra"`
	PostalCode    string         `json:"postal_code"`
	City          string         `json:"city"`
	FamilyMembers int            `json:"family_members" gorm:"default:1"`
	DiscordID     *string        `json:"discord_id,omitempty" gorm:"uniqueIndex"`
	IsStaff       bool           `json:"is_staff"`
	Registrations []Registration `json:"registrations,omitempty"`
}

func (p Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Participant) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	return nil
}

func (p *Participant) CheckPassword(raw string) bool {
	if p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(raw)) == nil
}

// NormalizeEmail is the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
