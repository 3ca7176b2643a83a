package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/weiawesome/wes-io-party/internal/domain"
	"github.com/weiawesome/wes-io-party/internal/store"
)

type fakeStore struct {
	mu    sync.Mutex
	data  map[string]*domain.Snapshot
	saves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]*domain.Snapshot)}
}

func (s *fakeStore) Load(_ context.Context, roomID string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.data[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (s *fakeStore) Save(_ context.Context, roomID string, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.data[roomID] = &cp
	s.saves++
	return nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) get(roomID string) (*domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.data[roomID]
	return snap, ok
}

func newTestRegistry(snapshots store.SnapshotStore, grace time.Duration) *Registry {
	return NewRegistry(
		func(string) Emitter { return &fakeEmitter{} },
		snapshots,
		RegistryConfig{
			Room:          Config{HeartbeatInterval: time.Hour},
			EvictionGrace: grace,
		},
	)
}

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	reg := newTestRegistry(nil, time.Minute)

	r1 := reg.GetOrCreate(context.Background(), "r1")
	r2 := reg.GetOrCreate(context.Background(), "r1")
	if r1 != r2 {
		t.Error("second GetOrCreate returned a different room")
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
	r1.Close()
}

func TestGetOrCreateHydratesFromStore(t *testing.T) {
	fs := newFakeStore()
	fs.data["r1"] = &domain.Snapshot{Video: "https://x/v.mp4", VideoTS: 5, Paused: true}

	reg := newTestRegistry(fs, time.Minute)
	rm := reg.GetOrCreate(context.Background(), "r1")
	defer rm.Close()

	snap, ok := rm.Snapshot()
	if !ok {
		t.Fatal("room is not running")
	}
	if snap.Video != "https://x/v.mp4" || snap.VideoTS != 5 || !snap.Paused {
		t.Errorf("hydrated state = %+v", snap)
	}
}

func TestSweepEvictsExpiredRoom(t *testing.T) {
	fs := newFakeStore()
	reg := newTestRegistry(fs, time.Millisecond)

	rm := reg.GetOrCreate(context.Background(), "r1")
	rm.SetHost("a", "https://x/v.mp4")
	if _, ok := rm.Snapshot(); !ok { // barrier: host change applied
		t.Fatal("room is not running")
	}

	time.Sleep(20 * time.Millisecond)
	reg.sweep(context.Background())

	if reg.Count() != 0 {
		t.Fatalf("Count() = %d after sweep, want 0", reg.Count())
	}
	if rm.Connect("x") {
		t.Error("evicted room still accepts connections")
	}
	snap, ok := fs.get("r1")
	if !ok {
		t.Fatal("eviction did not persist a snapshot")
	}
	if snap.Video != "https://x/v.mp4" {
		t.Errorf("persisted video = %q", snap.Video)
	}

	// Recreating the room restores the persisted state.
	rm2 := reg.GetOrCreate(context.Background(), "r1")
	defer rm2.Close()
	snap2, ok := rm2.Snapshot()
	if !ok || snap2.Video != "https://x/v.mp4" {
		t.Errorf("recreated room state = %+v (running=%v)", snap2, ok)
	}
}

func TestSweepKeepsOccupiedRoom(t *testing.T) {
	reg := newTestRegistry(nil, time.Millisecond)

	rm := reg.GetOrCreate(context.Background(), "r1")
	defer rm.Close()
	if !rm.Connect("a") {
		t.Fatal("connect failed")
	}
	if _, ok := rm.Snapshot(); !ok { // barrier: connect applied
		t.Fatal("room is not running")
	}

	time.Sleep(20 * time.Millisecond)
	reg.sweep(context.Background())

	if reg.Count() != 1 {
		t.Errorf("Count() = %d, occupied room was evicted", reg.Count())
	}
}

func TestSweepHonoursGracePeriod(t *testing.T) {
	reg := newTestRegistry(nil, time.Hour)

	rm := reg.GetOrCreate(context.Background(), "r1")
	defer rm.Close()

	reg.sweep(context.Background())
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, room evicted before grace elapsed", reg.Count())
	}
}

func TestSaveAll(t *testing.T) {
	fs := newFakeStore()
	reg := newTestRegistry(fs, time.Minute)

	for _, id := range []string{"r1", "r2"} {
		rm := reg.GetOrCreate(context.Background(), id)
		defer rm.Close()
		rm.SetHost("a", "https://x/"+id+".mp4")
		if _, ok := rm.Snapshot(); !ok {
			t.Fatalf("room %s is not running", id)
		}
	}

	reg.SaveAll(context.Background())

	for _, id := range []string{"r1", "r2"} {
		snap, ok := fs.get(id)
		if !ok {
			t.Errorf("room %s was not saved", id)
			continue
		}
		if snap.Video != "https://x/"+id+".mp4" {
			t.Errorf("room %s persisted video = %q", id, snap.Video)
		}
	}
}
