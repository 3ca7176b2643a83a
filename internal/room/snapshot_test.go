package room

import (
	"testing"

	"github.com/weiawesome/wes-io-party/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	r, _ := newTestRoom()
	r.connect("a")
	r.connect("b")
	r.setName("a", "alice")
	r.setPicture("b", "data:image/png;base64,xyz")
	r.requestHost("a", "https://x/video.mp4")
	r.seek("a", 42)
	r.pause("a")
	r.chatMessage("b", "hello")
	r.reportTimestamp("b", 40)

	snap := r.snapshot()

	r2, _ := newTestRoom()
	r2.hydrate(&snap)

	if r2.video != r.video || r2.videoTS != r.videoTS || r2.paused != r.paused {
		t.Errorf("host state: got %q/%v/%v, want %q/%v/%v",
			r2.video, r2.videoTS, r2.paused, r.video, r.videoTS, r.paused)
	}
	if r2.nameMap["a"] != "alice" {
		t.Errorf("nameMap = %v", r2.nameMap)
	}
	if r2.pictureMap["b"] != "data:image/png;base64,xyz" {
		t.Errorf("pictureMap = %v", r2.pictureMap)
	}
	if len(r2.chat) != len(r.chat) {
		t.Fatalf("chat length = %d, want %d", len(r2.chat), len(r.chat))
	}
	last := r2.chat[len(r2.chat)-1]
	if last.ID != "b" || last.Msg != "hello" {
		t.Errorf("restored chat tail = %+v", last)
	}

	// Connection-scoped state is never persisted.
	if len(r2.roster) != 0 {
		t.Errorf("roster restored from snapshot: %+v", r2.roster)
	}
	if len(r2.tsMap) != 0 {
		t.Errorf("tsMap restored from snapshot: %v", r2.tsMap)
	}
}

func TestSnapshotExcludesConnectionState(t *testing.T) {
	r, _ := newTestRoom()
	r.connect("a")
	r.reportTimestamp("a", 10)

	snap := r.snapshot()

	if snap.NameMap != nil || snap.PictureMap != nil || snap.Chat != nil || snap.VBrowser != nil {
		t.Errorf("empty optional fields were populated: %+v", snap)
	}
}

func TestSnapshotCopiesVBrowserSession(t *testing.T) {
	r, _ := newTestRoom()
	r.connect("a")
	r.startVBrowser("a")

	snap := r.snapshot()
	if snap.VBrowser == nil {
		t.Fatal("vbrowser session not captured")
	}
	if snap.VBrowser == r.vbrowser {
		t.Error("snapshot aliases the live session")
	}
	if snap.VBrowser.Host != "vb.example.com" {
		t.Errorf("session host = %q", snap.VBrowser.Host)
	}
}

func TestHydratePartialSnapshot(t *testing.T) {
	r, _ := newTestRoom()
	r.hydrate(&domain.Snapshot{Video: "https://x/v.mp4", VideoTS: 3, Paused: true})

	if r.video != "https://x/v.mp4" || r.videoTS != 3 || !r.paused {
		t.Errorf("host state not applied: %q/%v/%v", r.video, r.videoTS, r.paused)
	}
	// Maps stay usable even when the snapshot omitted them.
	r.setName("a", "alice")
	if r.nameMap["a"] != "alice" {
		t.Errorf("nameMap unusable after partial hydrate: %v", r.nameMap)
	}
	if r.chat != nil {
		t.Errorf("chat = %v, want nil", r.chat)
	}
}
