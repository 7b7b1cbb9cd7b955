// internal/session/session.go
//
// Session service: the read-modify-write cycle around the game engine.
// Responsibilities:
//   - Load a game by session key, creating it on first interaction.
//   - Apply guesses and persist only accepted ones.
//   - Start new games (random or daily answer), applying the history policy
//     to the game being replaced.
//   - Serialize concurrent requests for the same key.

package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgame/internal/config"
	"github.com/robalobadob/wordgame/internal/daily"
	"github.com/robalobadob/wordgame/internal/game"
	"github.com/robalobadob/wordgame/internal/store"
)

// Modes accepted by Start.
const (
	ModeRandom = "random"
	ModeDaily  = "daily"
)

// ErrBadOptions is wrapped when Start options cannot produce a game.
var ErrBadOptions = errors.New("session: bad game options")

// Lexicon is the dictionary plus the answer list daily mode draws from.
type Lexicon interface {
	game.Dictionary
	Common(length int) []string
}

// Options configures Start. Zero values take the service defaults.
type Options struct {
	Mode       string
	WordLength int
	GuessLimit int
	Answer     string // fixed answer; must be a valid word
}

// Service coordinates the store and the engine.
type Service struct {
	store    store.Store
	lex      Lexicon
	defaults game.Config
	history  string
	salt     string
	now      func() time.Time
	locks    [64]sync.Mutex
}

// New constructs a Service.
func New(st store.Store, lex Lexicon, gameCfg config.GameConfig, history, dailySalt string) *Service {
	return &Service{
		store:    st,
		lex:      lex,
		defaults: game.Config{WordLength: gameCfg.WordLength, GuessLimit: gameCfg.GuessLimit},
		history:  history,
		salt:     dailySalt,
		now:      time.Now,
	}
}

// lock serializes work on key. Distinct keys may share a stripe.
func (s *Service) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &s.locks[h.Sum32()%uint32(len(s.locks))]
	mu.Lock()
	return mu.Unlock
}

// Ping checks the store when it supports a health check.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Get loads and rehydrates the game for key. store.ErrNotFound passes through;
// an unreadable record wraps game.ErrCorruptState.
func (s *Service) Get(ctx context.Context, key string) (*game.Game, error) {
	st, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return game.FromState(s.lex, st)
}

// Guess applies guess to the game for key, creating the game first if the key
// is new. A rejected guess returns the unchanged game with a *game.Rejection
// error and nothing is written.
func (s *Service) Guess(ctx context.Context, key, guess string) (*game.Game, []game.Score, error) {
	defer s.lock(key)()

	g, err := s.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		g, err = s.create(ctx, key, Options{})
	}
	if err != nil {
		return nil, nil, err
	}

	scores, err := g.Guess(guess)
	var rej *game.Rejection
	if errors.As(err, &rej) {
		log.Debug().Str("key", key).Str("code", string(rej.Code)).Msg("guess rejected")
		return g, nil, err
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.Save(ctx, key, g.ToState()); err != nil {
		return nil, nil, fmt.Errorf("session: save %s: %w", key, err)
	}
	if g.Terminal() {
		log.Info().Str("key", key).Str("status", string(g.Status())).Int("guesses", len(g.Guesses())).Msg("game finished")
	}
	return g, scores, nil
}

// Start begins a fresh game for key, replacing whatever was stored.
func (s *Service) Start(ctx context.Context, key string, opts Options) (*game.Game, error) {
	defer s.lock(key)()

	prev, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case errors.Is(err, game.ErrCorruptState):
		log.Warn().Err(err).Str("key", key).Msg("replacing unreadable game")
	case err != nil:
		return nil, err
	default:
		if err := s.retire(ctx, key, prev); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, key, opts)
}

// retire applies the history policy to a game about to be replaced.
func (s *Service) retire(ctx context.Context, key string, prev *game.Game) error {
	if !prev.Terminal() {
		log.Info().Str("key", key).Int("guesses", len(prev.Guesses())).Msg("abandoning game in progress")
		return nil
	}
	if s.history != config.HistoryArchive {
		return nil
	}
	archiveKey := ArchiveKey(key, prev.Status(), s.now())
	if err := s.store.Save(ctx, archiveKey, prev.ToState()); err != nil {
		return fmt.Errorf("session: archive %s: %w", key, err)
	}
	log.Debug().Str("key", key).Str("archive", archiveKey).Msg("archived finished game")
	return nil
}

// ArchiveKey names the record a finished game is kept under.
func ArchiveKey(key string, status game.Status, at time.Time) string {
	return fmt.Sprintf("%s#%s-%d", key, status, at.UnixMilli())
}

// create builds a game from opts and saves it under key.
func (s *Service) create(ctx context.Context, key string, opts Options) (*game.Game, error) {
	cfg := s.defaults
	if opts.WordLength > 0 {
		cfg.WordLength = opts.WordLength
	}
	if opts.GuessLimit > 0 {
		cfg.GuessLimit = opts.GuessLimit
	}

	switch strings.ToLower(opts.Mode) {
	case "", ModeRandom:
		if opts.Answer != "" {
			if !s.lex.Contains(opts.Answer) {
				return nil, fmt.Errorf("%w: answer %q is not a word", ErrBadOptions, opts.Answer)
			}
			cfg.Answer = opts.Answer
		}
	case ModeDaily:
		cfg.Answer = daily.Pick(s.now(), s.salt, s.lex.Common(cfg.WordLength))
		if cfg.Answer == "" {
			return nil, fmt.Errorf("%w: no daily word of length %d", ErrBadOptions, cfg.WordLength)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrBadOptions, opts.Mode)
	}

	g, err := game.New(s.lex, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, key, g.ToState()); err != nil {
		return nil, fmt.Errorf("session: save %s: %w", key, err)
	}
	log.Debug().Str("key", key).Int("length", len([]rune(g.Answer()))).Msg("game created")
	return g, nil
}
