package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nebula/middleware"
	"nebula/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int64
}

// Hub maintains the set of active clients. A user may hold several
// connections at once.
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastPayload
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
}

type BroadcastPayload struct {
	UserID  int64
	Message []byte
}

// NewHub creates a hub; call Run to start it
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastPayload, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the WebSocket hub and returns when Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mutex.Unlock()
			log.Printf("Client connected: UserID %d", client.UserID)

			if data, err := encodeEvent(models.EventConnected, map[string]int64{"userId": client.UserID}); err == nil {
				h.deliver(client, data)
			}

		case client := <-h.unregister:
			h.remove(client)
			log.Printf("Client disconnected: UserID %d", client.UserID)

		case payload := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[payload.UserID]))
			for c := range h.clients[payload.UserID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()
			for _, c := range targets {
				h.deliver(c, payload.Message)
			}

		case <-h.done:
			h.mutex.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			h.mutex.Unlock()
			return
		}
	}
}

// Stop shuts the hub and every client's write pump
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// deliver queues data for c, dropping c if its buffer is full
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set := h.clients[c.UserID]
	if !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
}

// Connections reports how many live connections userID has
func (h *Hub) Connections(userID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}

// Push sends an event to every connection of userID
func (h *Hub) Push(userID int64, eventType string, payload any) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- BroadcastPayload{UserID: userID, Message: data}:
	case <-h.done:
	}
}

func encodeEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.Event{Type: eventType, Payload: raw})
}

// HandleWebSocket upgrades an authenticated request onto the hub
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go s.writePump(client)
	go s.readPump(client)
}

// readPump only watches for the close; clients never send frames upstream
func (s *Server) readPump(c *Client) {
	defer func() {
		select {
		case s.hub.unregister <- c:
		case <-s.hub.done:
		}
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *Server) writePump(c *Client) {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
