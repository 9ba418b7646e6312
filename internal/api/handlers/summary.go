package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/summarize"
)

type GenerateSummaryRequest struct {
	Regenerate bool `json:"regenerate"`
}

type SummaryResponse struct {
	ID              uuid.UUID       `json:"id"`
	ConversationID  uuid.UUID       `json:"conversationId"`
	Content         string          `json:"content"`
	Symptoms        string          `json:"symptoms"`
	Diagnosis       string          `json:"diagnosis"`
	Medications     string          `json:"medications"`
	FollowUpActions string          `json:"followUpActions"`
	Disclaimer      string          `json:"disclaimer"`
	Metadata        json.RawMessage `json:"metadata"`
	GeneratedBy     uuid.UUID       `json:"generatedBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func convertToSummaryResponse(s *models.Summary) SummaryResponse {
	return SummaryResponse{
		ID:              s.ID,
		ConversationID:  s.ConversationID,
		Content:         s.Content,
		Symptoms:        s.Symptoms,
		Diagnosis:       s.Diagnosis,
		Medications:     s.Medications,
		FollowUpActions: s.FollowUpActions,
		Disclaimer:      s.Disclaimer,
		Metadata:        json.RawMessage(s.Metadata),
		GeneratedBy:     s.GeneratedBy,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// GenerateSummary produces the conversation's single summary row. Only the
// doctor on the conversation may generate; without regenerate intent an
// existing summary is a conflict.
func (h *handler) GenerateSummary(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)
	if conv.DoctorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the doctor can generate a summary"})
		return
	}

	// The body is optional; regenerate defaults to false.
	var req GenerateSummaryRequest
	_ = c.ShouldBindJSON(&req)

	var existing models.Summary
	err := h.db.Where("conversation_id = ?", conv.ID).First(&existing).Error
	summaryExists := err == nil
	if summaryExists && !req.Regenerate {
		respondError(c, fmt.Errorf("%w: a summary already exists for this conversation", chat.ErrConflict))
		return
	}

	var messages []models.Message
	if err := h.db.Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	if len(messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversation has no messages to summarize"})
		return
	}

	result := h.generator.Generate(c.Request.Context(), messages)

	metadata, err := json.Marshal(map[string]interface{}{
		"ai_generated":     result.AIGenerated,
		"method":           result.Method,
		"model":            result.Model,
		"message_count":    len(messages),
		"doctor_language":  conv.DoctorLanguage,
		"patient_language": conv.PatientLanguage,
		"generated_at":     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode summary metadata"})
		return
	}

	summary := models.Summary{
		ConversationID:  conv.ID,
		Content:         result.Content,
		Symptoms:        result.Symptoms,
		Diagnosis:       result.Diagnosis,
		Medications:     result.Medications,
		FollowUpActions: result.FollowUp,
		Disclaimer:      summarize.Disclaimer,
		Metadata:        metadata,
		GeneratedBy:     userID,
	}

	// Upsert keyed on the unique conversation_id: regenerate overwrites the
	// single row in place.
	err = h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "symptoms", "diagnosis", "medications",
			"follow_up_actions", "disclaimer", "metadata", "generated_by", "updated_at",
		}),
	}).Create(&summary).Error
	if err != nil {
		log.Printf("Failed to save summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save summary"})
		return
	}

	// Re-read so the response carries the row that actually exists,
	// including timestamps after an upsert.
	var saved models.Summary
	if err := h.db.Where("conversation_id = ?", conv.ID).First(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved summary"})
		return
	}

	status := http.StatusCreated
	if summaryExists {
		status = http.StatusOK
	}
	c.JSON(status, convertToSummaryResponse(&saved))
}

// GetSummary returns the conversation's summary; participants only.
func (h *handler) GetSummary(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	var summary models.Summary
	if err := h.db.Where("conversation_id = ?", conv.ID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No summary generated yet"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
		}
		return
	}

	c.JSON(http.StatusOK, convertToSummaryResponse(&summary))
}
