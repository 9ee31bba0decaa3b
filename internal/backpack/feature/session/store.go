package session

import (
	"sync"

	"intheback.ai/internal/item"
)

// Store holds one snapshot per actor. Implementations must be safe for
// concurrent use across different actors.
type Store interface {
	// Swap stores snap for actor and returns the value it replaced.
	Swap(actor string, snap *item.Stack) (prev *item.Stack, replaced bool)
	LoadAndDelete(actor string) (*item.Stack, bool)
	Load(actor string) (*item.Stack, bool)
	Len() int
	// Clear drops every entry and returns how many there were.
	Clear() int
}

type MemStore struct {
	mu   sync.Mutex
	open map[string]*item.Stack
}

func NewMemStore() *MemStore {
	return &MemStore{open: map[string]*item.Stack{}}
}

func (m *MemStore) Swap(actor string, snap *item.Stack) (*item.Stack, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.open[actor]
	m.open[actor] = snap
	return prev, ok
}

func (m *MemStore) LoadAndDelete(actor string) (*item.Stack, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.open[actor]
	if ok {
		delete(m.open, actor)
	}
	return v, ok
}

func (m *MemStore) Load(actor string) (*item.Stack, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.open[actor]
	return v, ok
}

func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

func (m *MemStore) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.open)
	m.open = map[string]*item.Stack{}
	return n
}
