package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Summary is the structured consultation summary. At most one exists per
// conversation; regeneration overwrites the row in place.
type Summary struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConversationID  uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Content         string
	Symptoms        string
	Diagnosis       string
	Medications     string
	FollowUpActions string
	Disclaimer      string
	Metadata        datatypes.JSON
	GeneratedBy     uuid.UUID `gorm:"type:uuid"`
}
