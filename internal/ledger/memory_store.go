package ledger

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and redis-less deployments.
// Assignments do not survive a restart, which only costs recomputation: the
// resolver is deterministic for a given set of hint data.
type MemoryStore struct {
	mu     sync.Mutex
	scopes map[string]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]map[string]int)}
}

func (s *MemoryStore) Get(ctx context.Context, scopeKey string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignments := make(map[string]int, len(s.scopes[scopeKey]))
	for key, hour := range s.scopes[scopeKey] {
		assignments[key] = hour
	}
	return assignments, nil
}

func (s *MemoryStore) Put(ctx context.Context, scopeKey string, assignments map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]int, len(assignments))
	for key, hour := range assignments {
		copied[key] = hour
	}
	s.scopes[scopeKey] = copied
	return nil
}
