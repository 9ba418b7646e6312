package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/storage"
)

// extensions for the allowed audio MIME types
var audioExtensions = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
	"audio/wav":  ".wav",
}

// UploadAudio stores an audio attachment and returns its stable object key
// plus a presigned playback URL. The key is what message rows reference.
func (h *handler) UploadAudio(c *gin.Context) {
	if h.audioStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audio storage is not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxAudioSize)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing audio file"})
		return
	}
	defer file.Close()

	if header.Size > storage.MaxAudioSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio file exceeds 10 MB limit"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !storage.AllowedAudioTypes[contentType] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("Unsupported audio type %q", contentType)})
		return
	}

	key := fmt.Sprintf("audio/%s%s", uuid.New(), audioExtensions[contentType])
	if err := h.audioStore.Put(c.Request.Context(), key, file, contentType); err != nil {
		log.Printf("Audio upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store audio file"})
		return
	}

	playbackURL, err := h.audioStore.PlaybackURL(c.Request.Context(), key)
	if err != nil {
		log.Printf("Failed to presign audio URL: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate playback URL"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "url": playbackURL})
}

// GetAudioURL returns a fresh presigned playback URL for a stored object.
func (h *handler) GetAudioURL(c *gin.Context) {
	if h.audioStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audio storage is not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing audio key"})
		return
	}

	playbackURL, err := h.audioStore.PlaybackURL(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate playback URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "url": playbackURL})
}

// DeleteAudio removes a stored audio object and nulls the audio reference on
// every message that pointed at it.
func (h *handler) DeleteAudio(c *gin.Context) {
	if h.audioStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audio storage is not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing audio key"})
		return
	}

	if err := h.audioStore.Delete(c.Request.Context(), key); err != nil {
		log.Printf("Audio delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete audio file"})
		return
	}

	// Null out references so playback never points at a removed object.
	var affected []models.Message
	if err := h.db.Where("audio_url = ?", key).Find(&affected).Error; err == nil && len(affected) > 0 {
		if err := h.db.Model(&models.Message{}).Where("audio_url = ?", key).
			Update("audio_url", nil).Error; err != nil {
			log.Printf("Failed to null audio references for %s: %v", key, err)
		}
		seen := map[uuid.UUID]bool{}
		for _, m := range affected {
			if !seen[m.ConversationID] {
				seen[m.ConversationID] = true
				chat.InvalidateMessageCache(context.Background(), h.redisClient, m.ConversationID)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": key})
}
