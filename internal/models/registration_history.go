package models

import (
	"gorm.io/gorm"
)

type RegistrationHistory struct {
	gorm.Model
	RegistrationID     uint   `json:"registration_id" gorm:"index"`
	ParticipantID      uint   `json:"participant_id"`
	Action             string `json:"action"`
	Adults             int    `json:"adults"`
	Children           int    `json:"children"`
	RegistrationFields `gorm:"embedded"`
}
