// Package ws implements the event broadcaster: a named-group pub-sub over
// websocket connections. Delivery is best-effort and at-most-once — there is
// no persistence or replay, and a slow subscriber only loses its own frames.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var validGroups = map[string]bool{
	domain.GroupAdministrators: true,
	domain.GroupPublic:         true,
	domain.GroupDrivers:        true,
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	groups  map[string]map[*Client]bool

	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		groups:     make(map[string]map[*Client]bool),
		unregister: make(chan *Client, 16),
	}
}

// Run processes client teardown until ctx is done. Registration happens
// synchronously in ServeWS before the pumps start, so an unregister can never
// be observed ahead of its registration.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.unregister:
			h.drop(c)
		}
	}
}

// Publish fans one event out to every member of the group. Non-blocking: a
// member whose send buffer is full misses this frame, nothing more.
func (h *Hub) Publish(group string, event domain.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.groups[group] {
		select {
		case c.send <- body:
		default:
			log.Printf("subscriber %s lagging, dropped %s frame", c.id, event.Type)
		}
	}
}

// Join adds the client to a named group. Unknown group names are rejected.
func (h *Hub) Join(c *Client, group string) bool {
	if !validGroups[group] {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][c] = true
	return true
}

func (h *Hub) Leave(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.groups[group], c)
}

// ClientCount is exposed through the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize reports how many subscribers a group currently has.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for _, members := range h.groups {
		delete(members, c)
	}
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	for g := range h.groups {
		delete(h.groups, g)
	}
}

// ServeWS upgrades an HTTP request into a subscriber connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	c := newClient(h, conn)
	h.add(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}
