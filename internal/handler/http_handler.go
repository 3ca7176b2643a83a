package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/weiawesome/wes-io-party/internal/hub"
	"github.com/weiawesome/wes-io-party/internal/room"
)

// HTTPHandler exposes a small read-only diagnostic surface next to the
// websocket endpoint.
type HTTPHandler struct {
	hub      *hub.Hub
	registry *room.Registry
}

func NewHTTPHandler(h *hub.Hub, registry *room.Registry) *HTTPHandler {
	return &HTTPHandler{hub: h, registry: registry}
}

type roomInfoResponse struct {
	RoomID       string  `json:"room_id"`
	Video        string  `json:"video"`
	VideoTS      float64 `json:"video_ts"`
	Paused       bool    `json:"paused"`
	Participants int     `json:"participants"`
}

func (h *HTTPHandler) GetRoomInfo(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	rm, ok := h.registry.Get(roomID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	snap, ok := rm.Snapshot()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	writeJSON(w, http.StatusOK, &roomInfoResponse{
		RoomID:       roomID,
		Video:        snap.Video,
		VideoTS:      snap.VideoTS,
		Paused:       snap.Paused,
		Participants: h.hub.GetRoomClientCount(roomID),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
