package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-party/internal/domain"
	"github.com/weiawesome/wes-io-party/internal/store"
	"github.com/weiawesome/wes-io-party/pkg/log"
)

// RegistryConfig holds room lifecycle tunables.
type RegistryConfig struct {
	Room Config
	// EvictionGrace is how long a room may stay empty before the
	// janitor persists its snapshot and shuts it down.
	EvictionGrace   time.Duration
	JanitorInterval time.Duration
	StoreTimeout    time.Duration
}

// Registry owns one Room per room id and routes nothing itself: rooms
// are isolated actors reachable only via their inbound operations.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	newEmitter func(roomID string) Emitter
	snapshots  store.SnapshotStore
	cfg        RegistryConfig
}

// NewRegistry creates a registry. snapshots may be nil to disable
// persistence.
func NewRegistry(newEmitter func(roomID string) Emitter, snapshots store.SnapshotStore, cfg RegistryConfig) *Registry {
	if cfg.EvictionGrace <= 0 {
		cfg.EvictionGrace = 5 * time.Minute
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = time.Minute
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	return &Registry{
		rooms:      make(map[string]*Room),
		newEmitter: newEmitter,
		snapshots:  snapshots,
		cfg:        cfg,
	}
}

// GetOrCreate returns the room for roomID, constructing it (hydrated
// from a persisted snapshot when one exists) on first use.
func (reg *Registry) GetOrCreate(ctx context.Context, roomID string) *Room {
	reg.mu.RLock()
	r, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if ok {
		return r
	}

	snap := reg.loadSnapshot(ctx, roomID)

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.rooms[roomID]; ok {
		return r
	}
	r = New(roomID, reg.newEmitter(roomID), reg.cfg.Room, snap)
	r.Start()
	reg.rooms[roomID] = r

	l := log.L()
	l.Info().Str(log.FieldRoomID, roomID).Bool("hydrated", snap != nil).Msg("room created")
	return r
}

// Get returns the room for roomID if it is currently active.
func (reg *Registry) Get(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[roomID]
	return r, ok
}

// Count returns the number of active rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Janitor evicts rooms that have been empty for longer than the grace
// period, persisting a final snapshot first. It blocks until ctx is
// done.
func (reg *Registry) Janitor(ctx context.Context) error {
	ticker := time.NewTicker(reg.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reg.sweep(ctx)
		}
	}
}

func (reg *Registry) sweep(ctx context.Context) {
	reg.mu.RLock()
	candidates := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		candidates = append(candidates, r)
	}
	reg.mu.RUnlock()

	now := time.Now()
	for _, r := range candidates {
		emptyAt, ok := r.EmptySince()
		if !ok || now.Sub(emptyAt) < reg.cfg.EvictionGrace {
			continue
		}
		reg.evict(ctx, r)
	}
}

func (reg *Registry) evict(ctx context.Context, r *Room) {
	// Recheck emptiness with the map locked so a connect racing the
	// sweep keeps its room.
	reg.mu.Lock()
	if _, ok := r.EmptySince(); !ok {
		reg.mu.Unlock()
		return
	}
	delete(reg.rooms, r.ID())
	reg.mu.Unlock()

	reg.saveSnapshot(ctx, r)
	r.Close()

	l := log.L()
	l.Info().Str(log.FieldRoomID, r.ID()).Msg("room evicted")
}

// SaveAll persists snapshots of every active room. Used at shutdown.
func (reg *Registry) SaveAll(ctx context.Context) {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	for _, r := range rooms {
		reg.saveSnapshot(ctx, r)
	}
}

func (reg *Registry) loadSnapshot(ctx context.Context, roomID string) *domain.Snapshot {
	if reg.snapshots == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, reg.cfg.StoreTimeout)
	defer cancel()

	snap, err := reg.snapshots.Load(ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to load snapshot, starting fresh")
		}
		return nil
	}
	return snap
}

func (reg *Registry) saveSnapshot(ctx context.Context, r *Room) {
	if reg.snapshots == nil {
		return
	}
	snap, ok := r.Snapshot()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, reg.cfg.StoreTimeout)
	defer cancel()

	if err := reg.snapshots.Save(ctx, r.ID(), &snap); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldRoomID, r.ID()).Msg("failed to save snapshot")
	}
}
