package hub

// RoomEmitter adapts the hub to a single room's outbound interface.
// Messages are marshalled in the caller's goroutine, so the room may
// hand over live state without copying.
type RoomEmitter struct {
	hub    *Hub
	roomID string
}

func NewRoomEmitter(h *Hub, roomID string) *RoomEmitter {
	return &RoomEmitter{hub: h, roomID: roomID}
}

func (e *RoomEmitter) ToClient(clientID string, message interface{}) {
	e.hub.SendToClient(e.roomID, clientID, message)
}

func (e *RoomEmitter) Broadcast(message interface{}) {
	e.hub.BroadcastToRoom(e.roomID, message, "")
}

func (e *RoomEmitter) BroadcastExcept(clientID string, message interface{}) {
	e.hub.BroadcastToRoom(e.roomID, message, clientID)
}
