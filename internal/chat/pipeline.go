package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/translate"
)

// EventNewMessage is broadcast to a conversation room after a message is
// persisted.
const EventNewMessage = "new-message"

// Broadcaster fans an event out to every participant currently attached to a
// conversation room. The websocket hub implements it.
type Broadcaster interface {
	Broadcast(conversationID uuid.UUID, event string, payload interface{})
}

// SendInput is a content submission entering the message pipeline.
type SendInput struct {
	OriginalText  string
	AudioURL      *string
	AudioDuration *float64
	MessageType   string
}

// ValidateSendInput checks a submission before any translation or persistence
// happens: it must carry non-empty text or an audio reference, and text must
// not exceed the length cap.
func ValidateSendInput(in SendInput) error {
	hasText := strings.TrimSpace(in.OriginalText) != ""
	hasAudio := in.AudioURL != nil && *in.AudioURL != ""

	if !hasText && !hasAudio {
		return fmt.Errorf("%w: message must contain text or an audio attachment", ErrValidation)
	}
	// The cap counts characters, not bytes; multibyte scripts are first-class
	// conversation languages here.
	if utf8.RuneCountInString(in.OriginalText) > translate.MaxTextLength {
		return fmt.Errorf("%w: text exceeds maximum length of %d characters", ErrValidation, translate.MaxTextLength)
	}
	switch in.MessageType {
	case "", models.MessageTypeText, models.MessageTypeAudio:
	default:
		return fmt.Errorf("%w: unknown message type %q", ErrValidation, in.MessageType)
	}
	return nil
}

// Pipeline accepts a message, resolves the translation direction from the
// sender's role, persists the message and notifies the conversation room.
type Pipeline struct {
	db          *gorm.DB
	rdb         *redis.Client
	translator  *translate.Translator
	broadcaster Broadcaster
}

// NewPipeline creates a message pipeline.
func NewPipeline(db *gorm.DB, rdb *redis.Client, translator *translate.Translator, broadcaster Broadcaster) *Pipeline {
	return &Pipeline{
		db:          db,
		rdb:         rdb,
		translator:  translator,
		broadcaster: broadcaster,
	}
}

// Send runs the full pipeline: validate, resolve target language, translate,
// persist, broadcast. Translation failures degrade to a placeholder and never
// fail the send; only validation, authorization and persistence errors are
// returned.
func (p *Pipeline) Send(ctx context.Context, conversationID, senderID uuid.UUID, in SendInput) (*models.Message, error) {
	var conv models.Conversation
	if err := p.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	senderRole := conv.RoleOf(senderID)
	if senderRole == "" {
		return nil, fmt.Errorf("%w: sender is not a participant", ErrForbidden)
	}

	if err := ValidateSendInput(in); err != nil {
		return nil, err
	}

	targetLang := TargetLanguage(senderRole, &conv)
	sourceLang := SourceLanguage(senderRole, &conv)
	translated := p.translator.Translate(ctx, in.OriginalText, targetLang, sourceLang)

	messageType := in.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	message := models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		SenderRole:     senderRole,
		OriginalText:   in.OriginalText,
		TranslatedText: translated,
		AudioURL:       in.AudioURL,
		AudioDuration:  in.AudioDuration,
		MessageType:    messageType,
	}

	if err := p.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	payload := NewMessagePayload(&message)
	if err := CacheMessage(ctx, p.rdb, payload); err != nil {
		log.Printf("Failed to cache message: %v", err)
	}

	// Broadcast the persisted row, not the pre-persist draft.
	if p.broadcaster != nil {
		p.broadcaster.Broadcast(conv.ID, EventNewMessage, payload)
	}

	return &message, nil
}
