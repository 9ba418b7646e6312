package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. A user's role is fixed at registration.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// User represents a doctor or patient account.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
	Email             string         `gorm:"uniqueIndex"`
	PasswordHash      string
	Role              string `gorm:"type:varchar(10);check:role IN ('doctor', 'patient')"`
	FirstName         string
	LastName          string
	PreferredLanguage string `gorm:"type:varchar(8);default:'en'"`
}
