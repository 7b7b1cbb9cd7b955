// internal/store/file.go
//
// Flat JSON file Store: one document mapping session key → game state.
//
//   - The file is created as "{}" if missing.
//   - Every Save rewrites the whole document through a temp file + rename,
//     so a crash never leaves a half-written file behind.
//   - A mutex serializes access within the process. Running several
//     processes against one file is not supported.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/robalobadob/wordgame/internal/game"
)

// FileStore is a Store backed by a single JSON document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (creating if needed) the JSON document at path.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) contents() (map[string]game.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	games := map[string]game.State{}
	if len(data) == 0 {
		return games, nil
	}
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return games, nil
}

// Save rewrites the document with key set to st.
func (s *FileStore) Save(ctx context.Context, key string, st game.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.contents()
	if err != nil {
		return err
	}
	games[key] = st

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".games-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(games); err != nil {
		tmp.Close()
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}

// Load returns the record for key or ErrNotFound.
func (s *FileStore) Load(ctx context.Context, key string) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.contents()
	if err != nil {
		return game.State{}, err
	}
	st, ok := games[key]
	if !ok {
		return game.State{}, ErrNotFound
	}
	return st, nil
}

func (s *FileStore) Close() error { return nil }
