package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordgame/internal/config"
	"github.com/robalobadob/wordgame/internal/game"
)

func sampleState() game.State {
	return game.State{
		Answer:           "crank",
		NumberOfGuesses:  6,
		GuessesRemaining: 4,
		Guesses:          []string{"slate", "carry"},
		Scores: [][]game.Score{
			{game.IncorrectLetter, game.IncorrectLetter, game.Correct, game.IncorrectLetter, game.IncorrectLetter},
			{game.Correct, game.WrongLocation, game.WrongLocation, game.IncorrectLetter, game.IncorrectLetter},
		},
		Status: game.InProgress,
	}
}

func freshState() game.State {
	return game.State{
		Answer: "slate", NumberOfGuesses: 6, GuessesRemaining: 6,
		Guesses: []string{}, Scores: [][]game.Score{}, Status: game.InProgress,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	st := sampleState()
	require.NoError(t, s.Save(ctx, "alice", st))
	got, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	// empty histories survive as empty, not missing
	require.NoError(t, s.Save(ctx, "bob", freshState()))
	got, err = s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, freshState(), got)
	assert.NotNil(t, got.Guesses)
	assert.NotNil(t, got.Scores)

	// overwrite
	won := sampleState()
	won.Guesses = append(won.Guesses, "crank")
	won.Scores = append(won.Scores, []game.Score{game.Correct, game.Correct, game.Correct, game.Correct, game.Correct})
	won.GuessesRemaining = 0
	won.Status = game.Won
	require.NoError(t, s.Save(ctx, "alice", won))
	got, err = s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, won, got)

	// keys are independent
	got, err = s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "slate", got.Answer)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	st := sampleState()
	require.NoError(t, s.Save(ctx, "k", st))
	st.Guesses[0] = "zzzzz"

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "slate", got.Guesses[0])
	got.Scores[0][0] = game.Correct

	again, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, game.IncorrectLetter, again.Scores[0][0])
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "game_state.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	exerciseStore(t, s)

	// a second handle sees what the first wrote
	other, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := other.Load(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, freshState(), got)
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "games.db")
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)

	var status string
	require.NoError(t, s.db.QueryRow(`SELECT status FROM games WHERE session_key=?`, "alice").Scan(&status))
	assert.Equal(t, string(game.Won), status)
}

func TestSQLiteStoreMigrationsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "games.db")
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "alice", sampleState()))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
	got, err := s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0, 0)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	assert.True(t, mr.Exists("wordgame:game:alice"))
	assert.Zero(t, mr.TTL("wordgame:game:alice"))
}

func TestRedisStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), "alice", sampleState()))
	assert.Equal(t, time.Hour, mr.TTL("wordgame:game:alice"))

	mr.FastForward(2 * time.Hour)
	_, err = s.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "127.0.0.1:1", "", 0, 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.Store{Backend: "memory"})
	require.NoError(t, err)
	exerciseStore(t, s)

	s, err = Open(ctx, config.Store{Backend: "file", File: config.FileStore{Path: filepath.Join(t.TempDir(), "g.json")}})
	require.NoError(t, err)
	exerciseStore(t, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, config.Store{Backend: "redis", Redis: config.RedisStore{Addr: mr.Addr()}})
	require.NoError(t, err)
	exerciseStore(t, s)

	_, err = Open(ctx, config.Store{Backend: "postgres"})
	assert.Error(t, err)
}

func TestPingers(t *testing.T) {
	_, ok := NewMemoryStore().(Pinger)
	assert.False(t, ok)

	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0, 0)
	require.NoError(t, err)
	defer s.Close()

	var p Pinger = s
	require.NoError(t, p.Ping(context.Background()))
	mr.Close()
	assert.Error(t, p.Ping(context.Background()))
}
