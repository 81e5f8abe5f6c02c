package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/errors"
)

// MemoryStore keeps snapshots in memory. Used by tests and by the server
// when no MongoDB is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

// Save upserts a snapshot by hash.
func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.Hash == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot hash cannot be empty")
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.snaps[snap.Hash]; ok {
		snap.CreatedAt = prev.CreatedAt
	}
	s.snaps[snap.Hash] = snap
	return nil
}

// Load retrieves a snapshot by hash.
func (s *MemoryStore) Load(ctx context.Context, hash string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[hash]
	if !ok {
		return Snapshot{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", hash)
	}
	return snap, nil
}

// Recent lists the newest snapshots, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	out := make([]Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Snapshot) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a snapshot by hash.
func (s *MemoryStore) Delete(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, hash)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
