package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Client is one websocket connection for one authenticated participant.
type Client struct {
	UserID uuid.UUID
	Role   string

	conn      *websocket.Conn
	send      chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an accepted connection. conn may be nil in tests; only the
// pumps touch it.
func NewClient(userID uuid.UUID, role string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		conn:   conn,
		send:   make(chan Event, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues an event for delivery. A slow client with a full buffer drops
// the event rather than blocking the hub.
func (c *Client) Send(ev Event) {
	select {
	case c.send <- ev:
	case <-c.done:
	default:
	}
}

// Events exposes the delivery queue; the write pump and tests consume it.
func (c *Client) Events() <-chan Event {
	return c.send
}

// Close releases the client. Safe to call multiple times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// WritePump serializes queued events onto the connection and keeps the
// connection alive with pings. It exits when the client closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump decodes inbound envelopes and hands them to the dispatcher until
// the connection drops.
func (c *Client) ReadPump(dispatch func(InboundEvent)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev InboundEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			return
		}
		dispatch(ev)
	}
}
