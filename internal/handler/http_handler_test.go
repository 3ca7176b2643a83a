package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/weiawesome/wes-io-party/internal/hub"
	"github.com/weiawesome/wes-io-party/internal/room"
)

func newInfoRouter(t *testing.T) (*mux.Router, *room.Registry) {
	t.Helper()
	h := hub.NewHub()
	go h.Run()

	reg := room.NewRegistry(
		func(roomID string) room.Emitter { return hub.NewRoomEmitter(h, roomID) },
		nil,
		room.RegistryConfig{Room: room.Config{HeartbeatInterval: time.Hour}},
	)

	router := mux.NewRouter()
	httpHandler := NewHTTPHandler(h, reg)
	router.HandleFunc("/api/v1/rooms/{room_id}", httpHandler.GetRoomInfo).Methods(http.MethodGet)
	router.HandleFunc("/health", httpHandler.HealthCheck).Methods(http.MethodGet)
	return router, reg
}

func TestGetRoomInfo(t *testing.T) {
	router, reg := newInfoRouter(t)

	rm := reg.GetOrCreate(context.Background(), "movie-night")
	defer rm.Close()
	rm.SetHost("a", "https://x/v.mp4")
	rm.Seek("a", 33)
	if _, ok := rm.Snapshot(); !ok {
		t.Fatal("room is not running")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rooms/movie-night", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body roomInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.RoomID != "movie-night" || body.Video != "https://x/v.mp4" || body.VideoTS != 33 {
		t.Errorf("body = %+v", body)
	}
	if body.Participants != 0 {
		t.Errorf("participants = %d, want 0 (no websocket clients)", body.Participants)
	}
}

func TestGetRoomInfoUnknownRoom(t *testing.T) {
	router, _ := newInfoRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rooms/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router, _ := newInfoRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}
