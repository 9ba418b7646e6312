package models

import (
	"time"

	"github.com/google/uuid"
)

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeAudio = "audio"
)

// Message represents a chat message. The sender's role is recorded at write
// time rather than joined from users, so history stays accurate even if the
// account's role were ever to change. Rows are append-only except for the
// read receipt and the nulling of the audio reference when the underlying
// file is deleted.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ConversationID uuid.UUID `gorm:"type:uuid;index"`
	SenderID       uuid.UUID `gorm:"type:uuid"`
	SenderRole     string    `gorm:"type:varchar(10);check:sender_role IN ('doctor', 'patient')"`
	OriginalText   string
	TranslatedText string
	AudioURL       *string
	AudioDuration  *float64
	MessageType    string `gorm:"type:varchar(10);default:'text';check:message_type IN ('text', 'audio')"`
	ReadAt         *time.Time
}
