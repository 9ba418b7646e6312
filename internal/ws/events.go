package ws

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Client→server event names.
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventSendMessage       = "send-message"
	EventTyping            = "typing"
	EventStopTyping        = "stop-typing"
)

// Server→client event names.
const (
	EventConversationJoined = "conversation-joined"
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventUserTyping         = "user-typing"
	EventUserStopTyping     = "user-stop-typing"
	EventError              = "error"
)

// Event is an outbound envelope written to a client.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// InboundEvent is the envelope read from a client; Data is decoded per event
// type by the handler.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// UserEvent is the payload of user-joined / user-left / user-typing events.
type UserEvent struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// ErrorEvent is the payload of error events, delivered to the requester only.
type ErrorEvent struct {
	Message string `json:"message"`
}
