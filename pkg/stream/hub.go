// Package stream serves a running simulation to remote renderers over
// websocket. Clients get a JSON hello, then one binary frame per
// Broadcast, and may send JSON rule updates back.
package stream

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

// Hello is the first message on every connection.
type Hello struct {
	Type       string     `json:"type"`
	Dims       int        `json:"dims"`
	Count      int        `json:"count"`
	HalfExtent [3]float64 `json:"halfExtent"`
	Limit      [3]float64 `json:"limit"`
	Types      []int      `json:"types"`
	Rules      sim.Rules  `json:"rules"`
}

// Reply answers a rules update: type "rules" with the rules now in effect,
// or type "error".
type Reply struct {
	Type  string     `json:"type"`
	Error string     `json:"error,omitempty"`
	Rules *sim.Rules `json:"rules,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // one writer at a time
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) writeBinary(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, b)
}

// Hub fans state frames out to every connected client.
type Hub struct {
	sim      *sim.Simulation
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	buf     []byte
	bufMu   sync.Mutex
}

// NewHub serves s. Any origin is accepted.
func NewHub(s *sim.Simulation) *Hub {
	return &Hub{
		sim: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) hello() Hello {
	half, limit := h.sim.HalfExtent(), h.sim.Limit()
	return Hello{
		Type:       "hello",
		Dims:       h.sim.Dims(),
		Count:      h.sim.Len(),
		HalfExtent: [3]float64{half.X, half.Y, half.Z},
		Limit:      [3]float64{limit.X, limit.Y, limit.Z},
		Types:      h.sim.Types(),
		Rules:      h.sim.Rules(),
	}
}

// ServeHTTP upgrades the request and handles the connection until it
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	if err := c.writeJSON(h.hello()); err != nil {
		log.Println("websocket hello error:", err)
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	for {
		var u sim.RulesUpdate
		if err := conn.ReadJSON(&u); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("websocket read error:", err)
			}
			return
		}
		reply := Reply{Type: "rules"}
		if err := h.sim.SetRules(u); err != nil {
			reply = Reply{Type: "error", Error: err.Error()}
		} else {
			rules := h.sim.Rules()
			reply.Rules = &rules
		}
		if err := c.writeJSON(reply); err != nil {
			log.Println("websocket write error:", err)
			return
		}
	}
}

// Broadcast sends the committed state to every client. Clients that fail
// to receive it are disconnected.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.bufMu.Lock()
	defer h.bufMu.Unlock()
	h.buf = AppendFrame(h.buf[:0], h.sim.Snapshot())
	for _, c := range targets {
		if err := c.writeBinary(h.buf); err != nil {
			log.Println("websocket send error:", err)
			c.conn.Close()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
