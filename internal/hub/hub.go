package hub

import (
	"encoding/json"
	"sync"

	"github.com/weiawesome/wes-io-party/pkg/log"
)

// Hub tracks active websocket clients grouped by room and fans outbound
// messages out to them. Delivery is best-effort: a message addressed to
// an unknown or unresponsive client is dropped.
type Hub struct {
	clients map[string]*Client            // clientID -> client
	rooms   map[string]map[string]*Client // roomID -> clientID -> client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMessage
	mu         sync.RWMutex
}

type roomMessage struct {
	RoomID  string
	Message []byte
	// To routes to a single client when set; otherwise the message goes
	// to the whole room minus Exclude.
	To      string
	Exclude string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if _, ok := h.rooms[client.RoomID]; !ok {
				h.rooms[client.RoomID] = make(map[string]*Client)
			}
			h.rooms[client.RoomID][client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldRoomID, client.RoomID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				if roomClients, ok := h.rooms[client.RoomID]; ok {
					delete(roomClients, client.ID)
					if len(roomClients) == 0 {
						delete(h.rooms, client.RoomID)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldRoomID, client.RoomID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *roomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.To != "" {
		client, ok := h.rooms[msg.RoomID][msg.To]
		if !ok {
			// Target disconnected; absorb silently.
			return
		}
		select {
		case client.Send <- msg.Message:
		default:
			go func() { h.unregister <- client }()
		}
		return
	}

	for clientID, client := range h.rooms[msg.RoomID] {
		if clientID == msg.Exclude {
			continue
		}
		select {
		case client.Send <- msg.Message:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToClient sends message to one client in a room. Unknown targets
// are dropped silently.
func (h *Hub) SendToClient(roomID, clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Msg("failed to marshal outbound message")
		return
	}
	h.broadcast <- &roomMessage{RoomID: roomID, To: clientID, Message: data}
}

// BroadcastToRoom sends message to every client in a room, minus the
// excluded client id when non-empty.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) {
	data, err := json.Marshal(message)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Msg("failed to marshal outbound message")
		return
	}
	h.broadcast <- &roomMessage{RoomID: roomID, Message: data, Exclude: exclude}
}

// GetRoomClientCount returns the number of connected clients in a room.
func (h *Hub) GetRoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
