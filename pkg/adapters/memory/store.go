package memory

import (
	"context"
	"sync"

	"github.com/mechadv/robocoord/pkg/domain"
)

// Store implements ports.Publisher in memory, keeping the most recent snapshots.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     []domain.Snapshot
	capacity int
}

// NewStore creates a store that keeps at most capacity snapshots.
// A capacity of zero or less keeps everything.
func NewStore(capacity int) *Store {
	return &Store{capacity: capacity}
}

// Publish appends the snapshot, dropping the oldest once full.
func (s *Store) Publish(ctx context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, snap)
	if s.capacity > 0 && len(s.data) > s.capacity {
		s.data = s.data[len(s.data)-s.capacity:]
	}
	return nil
}

// Latest returns the newest snapshot, if any.
func (s *Store) Latest() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return domain.Snapshot{}, false
	}
	return s.data[len(s.data)-1], true
}

// List returns a copy of the stored snapshots, oldest first.
func (s *Store) List() []domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Snapshot, len(s.data))
	copy(out, s.data)
	return out
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
