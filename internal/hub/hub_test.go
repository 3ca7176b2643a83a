package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/weiawesome/wes-io-party/internal/domain"
)

func newRegisteredClient(t *testing.T, h *Hub, id, roomID string) *Client {
	t.Helper()
	c := NewClient(id, roomID, h, nil, Config{})
	h.Register(c)
	waitFor(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.clients[id]
		return ok
	})
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func recvMessage(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("client %s unexpectedly received %s", c.ID, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newRegisteredClient(t, h, "a", "r1")
	b := newRegisteredClient(t, h, "b", "r1")
	c := newRegisteredClient(t, h, "c", "r2")

	h.BroadcastToRoom("r1", &domain.PauseNoticeMessage{Type: domain.MsgTypePause}, "")

	for _, cl := range []*Client{a, b} {
		var base domain.BaseMessage
		if err := json.Unmarshal(recvMessage(t, cl), &base); err != nil {
			t.Fatalf("client %s received invalid JSON: %v", cl.ID, err)
		}
		if base.Type != domain.MsgTypePause {
			t.Errorf("client %s received type %q", cl.ID, base.Type)
		}
	}
	assertNoMessage(t, c)
}

func TestBroadcastExcludesSender(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newRegisteredClient(t, h, "a", "r1")
	b := newRegisteredClient(t, h, "b", "r1")

	h.BroadcastToRoom("r1", &domain.SeekNoticeMessage{Type: domain.MsgTypeSeek, Timestamp: 9}, "a")

	recvMessage(t, b)
	assertNoMessage(t, a)
}

func TestSendToClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newRegisteredClient(t, h, "a", "r1")
	b := newRegisteredClient(t, h, "b", "r1")

	h.SendToClient("r1", "a", &domain.HostStateMessage{Type: domain.MsgTypeHostState, Video: "v"})

	var msg domain.HostStateMessage
	if err := json.Unmarshal(recvMessage(t, a), &msg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if msg.Video != "v" {
		t.Errorf("video = %q", msg.Video)
	}
	assertNoMessage(t, b)
}

func TestSendToUnknownClientIsDropped(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newRegisteredClient(t, h, "a", "r1")

	h.SendToClient("r1", "ghost", &domain.PauseNoticeMessage{Type: domain.MsgTypePause})
	h.SendToClient("r9", "a", &domain.PauseNoticeMessage{Type: domain.MsgTypePause})

	assertNoMessage(t, a)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newRegisteredClient(t, h, "a", "r1")
	h.Unregister(a)

	waitFor(t, func() bool { return h.GetRoomClientCount("r1") == 0 })

	select {
	case _, ok := <-a.Send:
		if ok {
			t.Error("send channel delivered data instead of closing")
		}
	case <-time.After(2 * time.Second):
		t.Error("send channel not closed")
	}

	// Unregistering twice is harmless.
	h.Unregister(a)
}

func TestGetRoomClientCount(t *testing.T) {
	h := NewHub()
	go h.Run()

	newRegisteredClient(t, h, "a", "r1")
	newRegisteredClient(t, h, "b", "r1")

	if n := h.GetRoomClientCount("r1"); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if n := h.GetRoomClientCount("nope"); n != 0 {
		t.Errorf("count for unknown room = %d, want 0", n)
	}
}

func TestClientSendMessageDropsWhenFull(t *testing.T) {
	c := NewClient("a", "r1", nil, nil, Config{})
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- []byte("x")
	}

	if err := c.SendMessage(&domain.PauseNoticeMessage{Type: domain.MsgTypePause}); err != nil {
		t.Fatalf("SendMessage returned %v", err)
	}
	if len(c.Send) != cap(c.Send) {
		t.Error("message was queued past capacity")
	}
}
