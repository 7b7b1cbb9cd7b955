// internal/store/memory.go
//
// In-memory Store. Used for development and tests, or when durability is not
// required. State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/wordgame/internal/game"
)

// memory is a map-based Store guarded by an RWMutex.
type memory struct {
	mu    sync.RWMutex
	games map[string]game.State
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]game.State)}
}

// Save adds or replaces the record.
func (m *memory) Save(ctx context.Context, key string, st game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[key] = cloneState(st)
	return nil
}

// Load returns a copy of the record or ErrNotFound.
func (m *memory) Load(ctx context.Context, key string) (game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.games[key]; ok {
		return cloneState(st), nil
	}
	return game.State{}, ErrNotFound
}

func (m *memory) Close() error { return nil }
