package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/translate"
)

type CreateConversationRequest struct {
	PatientID       uuid.UUID `json:"patientId" binding:"required"`
	PatientLanguage string    `json:"patientLanguage" binding:"omitempty"`
	DoctorLanguage  string    `json:"doctorLanguage" binding:"omitempty"`
	Title           string    `json:"title" binding:"required,max=200"`
	OnConflict      string    `json:"onConflict" binding:"omitempty,oneof=reuse endAndCreate"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active ended archived"`
}

type ConversationResponse struct {
	ID              uuid.UUID  `json:"id"`
	DoctorID        uuid.UUID  `json:"doctorId"`
	PatientID       uuid.UUID  `json:"patientId"`
	DoctorName      string     `json:"doctorName,omitempty"`
	PatientName     string     `json:"patientName,omitempty"`
	DoctorLanguage  string     `json:"doctorLanguage"`
	PatientLanguage string     `json:"patientLanguage"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	MessageCount    int64      `json:"messageCount"`
	HasSummary      bool       `json:"hasSummary"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
}

func convertToConversationResponse(conv *models.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:              conv.ID,
		DoctorID:        conv.DoctorID,
		PatientID:       conv.PatientID,
		DoctorLanguage:  conv.DoctorLanguage,
		PatientLanguage: conv.PatientLanguage,
		Title:           conv.Title,
		Status:          conv.Status,
		CreatedAt:       conv.CreatedAt,
		UpdatedAt:       conv.UpdatedAt,
		EndedAt:         conv.EndedAt,
	}
	if conv.Doctor != nil {
		resp.DoctorName = fmt.Sprintf("%s %s", conv.Doctor.FirstName, conv.Doctor.LastName)
	}
	if conv.Patient != nil {
		resp.PatientName = fmt.Sprintf("%s %s", conv.Patient.FirstName, conv.Patient.LastName)
	}
	return resp
}

// CreateConversation starts a new active conversation between the calling
// doctor and a patient. At most one active conversation may exist per pair;
// on conflict the caller picks reuse or endAndCreate.
func (h *handler) CreateConversation(c *gin.Context) {
	if c.MustGet("role").(string) != models.RoleDoctor {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only doctors can start conversations"})
		return
	}
	doctorID := c.MustGet("userID").(uuid.UUID)

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient models.User
	if err := h.db.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	patientLanguage := req.PatientLanguage
	if patientLanguage == "" {
		patientLanguage = patient.PreferredLanguage
	}
	doctorLanguage := req.DoctorLanguage
	if doctorLanguage == "" {
		doctorLanguage = h.config.DefaultDoctorLang
	}
	if !translate.IsSupported(patientLanguage) || !translate.IsSupported(doctorLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversation language"})
		return
	}

	// Lookup-before-create; the partial unique index backstops the race.
	var existing models.Conversation
	err := h.db.Where("doctor_id = ? AND patient_id = ? AND status = ?",
		doctorID, req.PatientID, models.StatusActive).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing conversations"})
		return
	}

	switch chat.ResolveCreate(err == nil, req.OnConflict) {
	case chat.ReuseExisting:
		c.JSON(http.StatusOK, convertToConversationResponse(&existing))
		return
	case chat.EndThenCreate:
		now := time.Now()
		updates := map[string]interface{}{"status": models.StatusEnded, "ended_at": now}
		if err := h.db.Model(&existing).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end existing conversation"})
			return
		}
	case chat.CreateConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error":        "An active conversation with this patient already exists",
			"conversation": convertToConversationResponse(&existing),
		})
		return
	}

	conversation := models.Conversation{
		DoctorID:        doctorID,
		PatientID:       req.PatientID,
		DoctorLanguage:  doctorLanguage,
		PatientLanguage: patientLanguage,
		Title:           req.Title,
		Status:          models.StatusActive,
	}

	if err := h.db.Create(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the create race; the index caught it.
			respondError(c, fmt.Errorf("%w: an active conversation with this patient already exists", chat.ErrConflict))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	c.JSON(http.StatusCreated, convertToConversationResponse(&conversation))
}

// ListConversations returns the caller's conversations, newest first, with
// an optional search over title and participant names.
func (h *handler) ListConversations(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	query := h.db.Preload("Doctor").Preload("Patient").
		Where("doctor_id = ? OR patient_id = ?", userID, userID).
		Order("created_at DESC")

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.
			Joins("JOIN users doctors ON doctors.id = conversations.doctor_id").
			Joins("JOIN users patients ON patients.id = conversations.patient_id").
			Where(`conversations.title ILIKE ? OR doctors.first_name ILIKE ? OR doctors.last_name ILIKE ?
				OR patients.first_name ILIKE ? OR patients.last_name ILIKE ?`,
				pattern, pattern, pattern, pattern, pattern)
	}

	var conversations []models.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	response := make([]ConversationResponse, 0, len(conversations))
	for i := range conversations {
		resp := convertToConversationResponse(&conversations[i])
		resp.MessageCount = h.messageCount(conversations[i].ID)
		resp.HasSummary = h.hasSummary(conversations[i].ID)
		response = append(response, resp)
	}

	c.JSON(http.StatusOK, response)
}

// GetConversation returns one conversation; participants only.
func (h *handler) GetConversation(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	resp := convertToConversationResponse(conv)
	resp.MessageCount = h.messageCount(conv.ID)
	resp.HasSummary = h.hasSummary(conv.ID)
	c.JSON(http.StatusOK, resp)
}

// UpdateConversationStatus applies a status transition. Allowed transitions:
// active→ended, active→archived, ended→archived.
func (h *handler) UpdateConversationStatus(c *gin.Context) {
	conv, ok := h.loadConversationForParticipant(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !chat.CanTransition(conv.Status, req.Status) {
		respondError(c, fmt.Errorf("%w: %s -> %s", chat.ErrInvalidTransition, conv.Status, req.Status))
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.StatusEnded {
		updates["ended_at"] = time.Now()
	}

	if err := h.db.Model(conv).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conversation"})
		return
	}

	c.JSON(http.StatusOK, convertToConversationResponse(conv))
}

// ListPatients returns the patient roster a doctor can start a conversation
// with.
func (h *handler) ListPatients(c *gin.Context) {
	if c.MustGet("role").(string) != models.RoleDoctor {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only doctors can list patients"})
		return
	}

	var patients []models.User
	if err := h.db.Where("role = ?", models.RolePatient).
		Order("first_name, last_name").Find(&patients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	response := make([]UserDTO, 0, len(patients))
	for _, p := range patients {
		response = append(response, convertToUserDTO(p))
	}
	c.JSON(http.StatusOK, response)
}

// ListLanguages returns the supported conversation languages.
func (h *handler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, translate.SupportedLanguages)
}

// loadConversationForParticipant parses the :conversationId param, loads the
// conversation and enforces that the caller is one of its participants. It
// writes the error response itself when returning ok=false.
func (h *handler) loadConversationForParticipant(c *gin.Context) (*models.Conversation, bool) {
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return nil, false
	}

	userID := c.MustGet("userID").(uuid.UUID)

	var conv models.Conversation
	if err := h.db.Preload("Doctor").Preload("Patient").First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		}
		return nil, false
	}

	if !conv.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return nil, false
	}

	return &conv, true
}

func (h *handler) messageCount(conversationID uuid.UUID) int64 {
	var count int64
	h.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&count)
	return count
}

func (h *handler) hasSummary(conversationID uuid.UUID) bool {
	var count int64
	h.db.Model(&models.Summary{}).Where("conversation_id = ?", conversationID).Count(&count)
	return count > 0
}
