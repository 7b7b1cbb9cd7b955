// Package store persists game.State records keyed by an opaque session key.
//
// Every backend writes the same canonical record (game.State as JSON, plus
// its status and update time where the backend has columns for them) under
// the key it is given. Retention of finished games is decided by callers,
// which save them under a separate key before overwriting.
package store

import (
	"context"
	"errors"

	"github.com/robalobadob/wordgame/internal/game"
)

// ErrNotFound is returned by Load when no record exists for the key.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for game sessions.
// Implementations are safe for concurrent use.
type Store interface {
	// Save persists or replaces the record for key.
	Save(ctx context.Context, key string, st game.State) error

	// Load retrieves the record for key, or ErrNotFound.
	Load(ctx context.Context, key string) (game.State, error)

	// Close releases backend resources.
	Close() error
}

// Pinger is implemented by backends with a connection worth health-checking.
type Pinger interface {
	Ping(ctx context.Context) error
}

// cloneState deep-copies st so callers cannot alias stored slices.
func cloneState(st game.State) game.State {
	out := st
	if st.Guesses != nil {
		out.Guesses = append(make([]string, 0, len(st.Guesses)), st.Guesses...)
	}
	if st.Scores != nil {
		out.Scores = make([][]game.Score, len(st.Scores))
		for i, s := range st.Scores {
			out.Scores[i] = append([]game.Score(nil), s...)
		}
	}
	return out
}
