package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/api/middleware"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/ws"
)

// backfillLimit bounds the recent-message history sent to a joining client.
const backfillLimit = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer for the REST API;
		// websocket auth rides on the token.
		return true
	},
}

type joinConversationData struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type typingData struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type sendMessageData struct {
	ConversationID uuid.UUID `json:"conversationId"`
	OriginalText   string    `json:"originalText"`
	AudioURL       *string   `json:"audioUrl"`
	AudioDuration  *float64  `json:"audioDuration"`
	MessageType    string    `json:"messageType"`
}

type conversationJoinedData struct {
	ConversationID  uuid.UUID             `json:"conversationId"`
	Messages        []chat.MessagePayload `json:"messages"`
	DoctorLanguage  string                `json:"doctorLanguage"`
	PatientLanguage string                `json:"patientLanguage"`
}

// HandleWebSocket upgrades the connection and runs the event loop for one
// client. Browsers cannot set an Authorization header on a websocket dial,
// so the token travels as a query parameter.
func (h *handler) HandleWebSocket(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	userID, role, err := middleware.ParseToken(tokenStr, h.config.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := ws.NewClient(userID, role, conn)
	h.hub.Connect(client)
	go client.WritePump()

	defer h.hub.Disconnect(client)
	client.ReadPump(func(ev ws.InboundEvent) {
		h.dispatchEvent(client, ev)
	})
}

func (h *handler) dispatchEvent(client *ws.Client, ev ws.InboundEvent) {
	switch ev.Event {
	case ws.EventJoinConversation:
		var data joinConversationData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			h.sendError(client, "Malformed join-conversation payload")
			return
		}
		h.handleJoin(client, data.ConversationID)

	case ws.EventLeaveConversation:
		h.hub.Detach(client)

	case ws.EventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			h.sendError(client, "Malformed send-message payload")
			return
		}
		h.handleSendMessage(client, data)

	case ws.EventTyping:
		var data typingData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return
		}
		h.handleTyping(client, data.ConversationID, true)

	case ws.EventStopTyping:
		var data typingData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return
		}
		h.handleTyping(client, data.ConversationID, false)

	default:
		h.sendError(client, "Unknown event: "+ev.Event)
	}
}

// handleJoin checks the joiner against the store, attaches them to the room
// and backfills recent history to the joiner only. Failures are reported to
// the requester and never disturb the rest of the room.
func (h *handler) handleJoin(client *ws.Client, conversationID uuid.UUID) {
	var conv models.Conversation
	if err := h.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		h.sendError(client, "Conversation not found")
		return
	}
	if !conv.IsParticipant(client.UserID) {
		h.sendError(client, "Not a participant of this conversation")
		return
	}

	h.hub.Attach(client, conv.ID)

	// Backfill: the most recent messages, delivered oldest first.
	var recent []models.Message
	if err := h.db.Where("conversation_id = ?", conv.ID).
		Order("created_at DESC").Limit(backfillLimit).Find(&recent).Error; err != nil {
		log.Printf("Failed to load backfill for %s: %v", conv.ID, err)
		recent = nil
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	client.Send(ws.Event{Event: ws.EventConversationJoined, Data: conversationJoinedData{
		ConversationID:  conv.ID,
		Messages:        chat.MessagePayloads(recent),
		DoctorLanguage:  conv.DoctorLanguage,
		PatientLanguage: conv.PatientLanguage,
	}})
}

// handleSendMessage feeds the pipeline. The background context is deliberate:
// a disconnect mid-send must not cancel persistence or the room broadcast.
func (h *handler) handleSendMessage(client *ws.Client, data sendMessageData) {
	_, err := h.pipeline.Send(context.Background(), data.ConversationID, client.UserID, chat.SendInput{
		OriginalText:  data.OriginalText,
		AudioURL:      data.AudioURL,
		AudioDuration: data.AudioDuration,
		MessageType:   data.MessageType,
	})
	if err != nil {
		h.sendError(client, err.Error())
	}
}

func (h *handler) handleTyping(client *ws.Client, conversationID uuid.UUID, typing bool) {
	// Typing indicators only flow inside the room the client is attached to.
	attached, ok := h.hub.AttachedConversation(client.UserID)
	if !ok || attached != conversationID {
		return
	}

	if typing {
		h.hub.BroadcastExcept(conversationID, client.UserID, ws.EventUserTyping,
			ws.UserEvent{UserID: client.UserID, Role: client.Role})
		return
	}
	h.hub.BroadcastExcept(conversationID, client.UserID, ws.EventUserStopTyping,
		ws.UserEvent{UserID: client.UserID})
}

func (h *handler) sendError(client *ws.Client, message string) {
	client.Send(ws.Event{Event: ws.EventError, Data: ws.ErrorEvent{Message: message}})
}
