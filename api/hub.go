package api

import (
	"context"
	"sync"
)

// Message types pushed to browsers.
const (
	MsgViewChanged = "view_changed"
	MsgPong        = "pong"
)

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type sessionMessage struct {
	session string
	msg     WSMessage
}

// WSHub tracks WebSocket connections grouped by session, so a change in
// one tab reaches the other tabs of the same visitor and nobody else.
type WSHub struct {
	mu         sync.RWMutex
	sessions   map[string]map[*WSClient]bool
	broadcast  chan sessionMessage
	register   chan *WSClient
	unregister chan *WSClient
	drop       chan string
	done       chan struct{}
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub     *WSHub
	session string
	send    chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		sessions:   make(map[string]map[*WSClient]bool),
		broadcast:  make(chan sessionMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		drop:       make(chan string, 64),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. It returns when ctx is cancelled, closing
// every client.
func (h *WSHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id := range h.sessions {
				h.closeSession(id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set := h.sessions[client.session]
			if set == nil {
				set = make(map[*WSClient]bool)
				h.sessions[client.session] = set
			}
			set[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case id := <-h.drop:
			h.mu.Lock()
			h.closeSession(id)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for client := range h.sessions[m.session] {
				select {
				case client.send <- m.msg:
				default:
					// Slow client; disconnect
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *WSHub) remove(client *WSClient) {
	set, ok := h.sessions[client.session]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.sessions, client.session)
	}
}

// closeSession must be called with mu held.
func (h *WSHub) closeSession(id string) {
	for client := range h.sessions[id] {
		close(client.send)
	}
	delete(h.sessions, id)
}

// Notify sends msg to every connection of a session. Messages are
// dropped when the hub is saturated or stopped.
func (h *WSHub) Notify(session string, msg WSMessage) {
	select {
	case h.broadcast <- sessionMessage{session: session, msg: msg}:
	case <-h.done:
	default:
	}
}

// Drop disconnects every client of a session, e.g. when it expires.
func (h *WSHub) Drop(session string) {
	select {
	case h.drop <- session:
	case <-h.done:
	default:
	}
}

// ClientCount returns the number of connections for a session.
func (h *WSHub) ClientCount(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[session])
}

// Register adds a client to the hub. It reports false once the hub has
// stopped.
func (h *WSHub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
