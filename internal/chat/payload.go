package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

// MessagePayload is the wire form of a persisted message, used both for REST
// responses and for the new-message realtime event.
type MessagePayload struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversationId"`
	SenderID       uuid.UUID  `json:"senderId"`
	SenderRole     string     `json:"senderRole"`
	OriginalText   string     `json:"originalText"`
	TranslatedText string     `json:"translatedText"`
	AudioURL       *string    `json:"audioUrl,omitempty"`
	AudioDuration  *float64   `json:"audioDuration,omitempty"`
	MessageType    string     `json:"messageType"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewMessagePayload converts a persisted message into its wire form.
func NewMessagePayload(m *models.Message) MessagePayload {
	return MessagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderRole:     m.SenderRole,
		OriginalText:   m.OriginalText,
		TranslatedText: m.TranslatedText,
		AudioURL:       m.AudioURL,
		AudioDuration:  m.AudioDuration,
		MessageType:    m.MessageType,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}

// MessagePayloads converts a slice of messages, oldest first.
func MessagePayloads(messages []models.Message) []MessagePayload {
	payloads := make([]MessagePayload, len(messages))
	for i := range messages {
		payloads[i] = NewMessagePayload(&messages[i])
	}
	return payloads
}
