package preferences

import (
	"context"
	"sync"
)

type memoryKey struct {
	scope Scope
	set   Set
}

// MemoryStore keeps preference sets for the lifetime of the process
type MemoryStore struct {
	sets map[memoryKey]map[string]struct{}
	mu   sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[memoryKey]map[string]struct{})}
}

func (m *MemoryStore) Has(_ context.Context, scope Scope, set Set, listingID string) (bool, error) {
	if err := ValidateArgs(scope, set); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[memoryKey{scope, set}][listingID]
	return ok, nil
}

func (m *MemoryStore) Add(_ context.Context, scope Scope, set Set, listingID string) error {
	if err := ValidateArgs(scope, set); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{scope, set}
	ids, ok := m.sets[key]
	if !ok {
		ids = make(map[string]struct{})
		m.sets[key] = ids
	}
	ids[listingID] = struct{}{}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, scope Scope, set Set, listingID string) error {
	if err := ValidateArgs(scope, set); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets[memoryKey{scope, set}], listingID)
	return nil
}

func (m *MemoryStore) Members(_ context.Context, scope Scope, set Set) ([]string, error) {
	if err := ValidateArgs(scope, set); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.sets[memoryKey{scope, set}]
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out, nil
}
