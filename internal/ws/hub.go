// Package ws implements the realtime session registry: which participant is
// connected, which conversation room they are attached to, and fan-out to a
// room. The registry is transient; the database remains the source of truth
// and the registry is rebuilt from client joins after a reconnect.
package ws

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const presenceTTL = 24 * time.Hour

// Hub owns the three routing relations behind one mutex: participant→client,
// participant→conversation, conversation→attached participants. A participant
// is attached to at most one conversation room at a time.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]*Client
	attached map[uuid.UUID]uuid.UUID
	rooms    map[uuid.UUID]map[uuid.UUID]*Client

	rdb *redis.Client
}

// NewHub creates an empty registry. rdb may be nil; presence tracking is then
// skipped.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		attached: make(map[uuid.UUID]uuid.UUID),
		rooms:    make(map[uuid.UUID]map[uuid.UUID]*Client),
		rdb:      rdb,
	}
}

// Connect registers a connected client and marks the participant online.
func (h *Hub) Connect(c *Client) {
	h.mu.Lock()
	h.clients[c.UserID] = c
	h.mu.Unlock()

	h.setPresence(c.UserID, true)
}

// Attach joins a client to a conversation room. A client already attached to
// a different room is detached from it first, with a user-left notification
// to that room. Authorization against the store is the caller's job; the
// registry only routes.
func (h *Hub) Attach(c *Client, conversationID uuid.UUID) {
	h.Detach(c)

	h.mu.Lock()
	h.attached[c.UserID] = conversationID
	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[uuid.UUID]*Client)
		h.rooms[conversationID] = room
	}
	room[c.UserID] = c
	h.mu.Unlock()

	h.BroadcastExcept(conversationID, c.UserID, EventUserJoined, UserEvent{UserID: c.UserID, Role: c.Role})
}

// Detach removes a client from its room, if any, notifying the remaining
// room members. Idempotent.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	conversationID, ok := h.attached[c.UserID]
	if ok {
		delete(h.attached, c.UserID)
		if room := h.rooms[conversationID]; room != nil {
			delete(room, c.UserID)
			if len(room) == 0 {
				delete(h.rooms, conversationID)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		h.Broadcast(conversationID, EventUserLeft, UserEvent{UserID: c.UserID, Role: c.Role})
	}
}

// Disconnect is Detach plus presence cleanup and removal of the connection
// handle.
func (h *Hub) Disconnect(c *Client) {
	h.Detach(c)

	h.mu.Lock()
	// Only drop the mapping if it still points at this client; a reconnect
	// may already have replaced it.
	if h.clients[c.UserID] == c {
		delete(h.clients, c.UserID)
	}
	h.mu.Unlock()

	h.setPresence(c.UserID, false)
	c.Close()
}

// Broadcast delivers an event to every participant currently attached to the
// conversation.
func (h *Hub) Broadcast(conversationID uuid.UUID, event string, payload interface{}) {
	h.BroadcastExcept(conversationID, uuid.Nil, event, payload)
}

// BroadcastExcept delivers to every attached participant except one.
func (h *Hub) BroadcastExcept(conversationID, exceptUserID uuid.UUID, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, c := range h.rooms[conversationID] {
		if userID == exceptUserID {
			continue
		}
		c.Send(Event{Event: event, Data: payload})
	}
}

// AttachedConversation returns the room the participant is currently in, if
// any.
func (h *Hub) AttachedConversation(userID uuid.UUID) (uuid.UUID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conversationID, ok := h.attached[userID]
	return conversationID, ok
}

func (h *Hub) setPresence(userID uuid.UUID, online bool) {
	if h.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("presence:%s", userID)
	var err error
	if online {
		err = h.rdb.Set(ctx, key, "online", presenceTTL).Err()
	} else {
		err = h.rdb.Del(ctx, key).Err()
	}
	if err != nil {
		log.Printf("Failed to update presence for %s: %v", userID, err)
	}
}
