package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation statuses. A conversation starts active, may be ended by either
// participant and archived afterwards; archived is terminal.
const (
	StatusActive   = "active"
	StatusEnded    = "ended"
	StatusArchived = "archived"
)

// Conversation is a consultation session between exactly one doctor and one patient.
type Conversation struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DoctorID        uuid.UUID `gorm:"type:uuid;index"`
	PatientID       uuid.UUID `gorm:"type:uuid;index"`
	DoctorLanguage  string    `gorm:"type:varchar(8);default:'en'"`
	PatientLanguage string    `gorm:"type:varchar(8)"`
	Title           string
	Status          string `gorm:"type:varchar(10);default:'active';check:status IN ('active', 'ended', 'archived')"`
	EndedAt         *time.Time

	Doctor  *User `gorm:"foreignKey:DoctorID"`
	Patient *User `gorm:"foreignKey:PatientID"`
}

// IsParticipant reports whether the given user is the doctor or the patient
// on this conversation.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.DoctorID == userID || c.PatientID == userID
}

// RoleOf returns the role the given user holds on this conversation,
// or "" if they are not a participant.
func (c *Conversation) RoleOf(userID uuid.UUID) string {
	switch userID {
	case c.DoctorID:
		return RoleDoctor
	case c.PatientID:
		return RolePatient
	}
	return ""
}
