package store

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-party/internal/domain"
)

// ErrNotFound is returned by Load when no snapshot exists for a room.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists room snapshots across restarts. Implementations
// must treat the snapshot as an opaque document; the room decides what
// is durable.
type SnapshotStore interface {
	Load(ctx context.Context, roomID string) (*domain.Snapshot, error)
	Save(ctx context.Context, roomID string, snap *domain.Snapshot) error
	Close() error
}
