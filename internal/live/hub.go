// Package live pushes session revisions to open pages over websockets.
//
// Each page connects to the hub with its session cookie. After every
// mutation of a session the hub sends {"revision": N} to that session's
// connections only; the page reloads when N is newer than what it rendered.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/ZanzyTHEbar/distributor-competition/internal/monitoring"
	"github.com/gorilla/websocket"
)

// Message is the payload sent to clients.
type Message struct {
	Revision uint64 `json:"revision"`
}

type envelope struct {
	sessionID string
	payload   []byte
}

// Hub fans revision messages out to the websocket clients of each session.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader  websocket.Upgrader
	connected atomic.Int64
	observe   func(delta int64)
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithAllowedOrigins accepts upgrades from these origins in addition to the
// serving host itself.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = originChecker(origins)
	}
}

// WithConnectionObserver is called with +1 and -1 as clients come and go.
func WithConnectionObserver(fn func(delta int64)) HubOption {
	return func(h *Hub) {
		h.observe = fn
	}
}

// NewHub creates a hub. Call Run to start it.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(nil),
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// Run owns the client registry until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.sessionID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.sessionID] = set
			}
			set[client] = true
			h.track(1)
			slog.Debug("Live client connected", "session", monitoring.ShortID(client.sessionID))

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.sessionID] {
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}

		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.drop(client)
				}
			}
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	set, ok := h.clients[client.sessionID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.sessionID)
	}
	close(client.send)
	h.track(-1)
	slog.Debug("Live client disconnected", "session", monitoring.ShortID(client.sessionID))
}

func (h *Hub) track(delta int64) {
	h.connected.Add(delta)
	if h.observe != nil {
		h.observe(delta)
	}
}

// Connected returns the number of open client connections.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Notify queues a revision message for the session's clients. It has the
// shape of a session listener and never blocks once the hub has stopped.
func (h *Hub) Notify(sessionID string, revision uint64) {
	payload, err := json.Marshal(Message{Revision: revision})
	if err != nil {
		slog.Error("Error marshaling live message", "error", err)
		return
	}

	select {
	case h.broadcast <- envelope{sessionID: sessionID, payload: payload}:
	case <-h.done:
	}
}

// Serve upgrades the request and attaches the connection to sessionID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 16),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}
