package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
)

type SendMessageRequest struct {
	OriginalText  string   `json:"originalText"`
	AudioURL      *string  `json:"audioUrl"`
	AudioDuration *float64 `json:"audioDuration"`
	MessageType   string   `json:"messageType" binding:"omitempty,oneof=text audio"`
}

// GetMessages returns a conversation's messages, oldest first; participants
// only. Recent messages are served from the Redis cache when possible.
func (h *handler) GetMessages(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	ctx := context.Background()

	// Try to get messages from cache
	if cached, err := chat.CachedMessages(ctx, h.redisClient, conv.ID); err == nil && len(cached) > 0 {
		c.JSON(http.StatusOK, cached)
		return
	}

	// If not in cache or Redis is not initialized, get from database
	var messages []models.Message
	if err := h.db.Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	payloads := chat.MessagePayloads(messages)

	// Cache the messages from database if Redis is available
	if err := chat.FillMessageCache(ctx, h.redisClient, conv.ID, payloads); err != nil {
		log.Printf("Failed to cache messages: %v", err)
	}

	c.JSON(http.StatusOK, payloads)
}

// SendMessage is the REST entry into the message pipeline.
func (h *handler) SendMessage(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)

	message, err := h.pipeline.Send(c.Request.Context(), conversationID, userID, chat.SendInput{
		OriginalText:  req.OriginalText,
		AudioURL:      req.AudioURL,
		AudioDuration: req.AudioDuration,
		MessageType:   req.MessageType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chat.NewMessagePayload(message))
}

// MarkMessagesRead stamps a read receipt on every unread message sent by the
// other participant.
func (h *handler) MarkMessagesRead(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)
	now := time.Now()

	result := h.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conv.ID, userID).
		Update("read_at", now)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark messages read"})
		return
	}

	// Cached payloads no longer carry the right read state.
	chat.InvalidateMessageCache(context.Background(), h.redisClient, conv.ID)

	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected, "readAt": now})
}
