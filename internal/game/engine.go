// internal/game/engine.go
//
// Core game engine for a single session.
// Responsibilities:
//   - Create new games with a sampled (or fixed) answer.
//   - Validate and apply guesses (terminal state, length, dictionary).
//   - Score guesses using the two-pass algorithm.
//   - Track state transitions: IN_PROGRESS → WON / LOST.
//
// The engine is synchronous and holds no locks; callers serialize access to
// a given Game.

package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultGuessLimit = 6
	DefaultWordLength = 5
)

// Config parameterizes New. Zero values take the defaults.
type Config struct {
	Answer     string // fixed answer; sampled from the dictionary when empty
	GuessLimit int
	WordLength int // length of the sampled answer; ignored when Answer is set
}

// New constructs a fresh in-progress game.
func New(dict Dictionary, cfg Config) (*Game, error) {
	limit := cfg.GuessLimit
	if limit <= 0 {
		limit = DefaultGuessLimit
	}
	ans := strings.ToLower(strings.TrimSpace(cfg.Answer))
	if ans == "" {
		length := cfg.WordLength
		if length <= 0 {
			length = DefaultWordLength
		}
		w, err := dict.Sample(length)
		if err != nil {
			return nil, fmt.Errorf("game: choose answer: %w", err)
		}
		ans = strings.ToLower(w)
	}
	return &Game{
		dict:      dict,
		answer:    ans,
		limit:     limit,
		remaining: limit,
		guesses:   []string{},
		scores:    [][]Score{},
		status:    InProgress,
	}, nil
}

// Guess validates and scores a guess, mutating the game state.
//
// Rejections (*Rejection, see ErrOutOfGuesses, ErrInvalidGuess, ErrNotAWord)
// leave the game untouched. An accepted guess always consumes an attempt,
// even when it wins.
func (g *Game) Guess(raw string) ([]Score, error) {
	guess := strings.ToLower(strings.TrimSpace(raw))
	if g.status.Terminal() || g.remaining == 0 {
		return nil, ErrOutOfGuesses
	}
	if utf8.RuneCountInString(guess) != utf8.RuneCountInString(g.answer) {
		return nil, ErrInvalidGuess
	}
	if !g.dict.Contains(guess) {
		return nil, ErrNotAWord
	}

	g.remaining--
	scores := scoreGuess(g.answer, guess)
	g.guesses = append(g.guesses, guess)
	g.scores = append(g.scores, scores)
	g.statusDerived = false

	switch {
	case guess == g.answer:
		g.status, g.remaining = Won, 0
	case g.remaining <= 0:
		g.status, g.remaining = Lost, 0
	}
	return append([]Score(nil), scores...), nil
}

// scoreGuess classifies every position of guess against answer.
//
// Pass 1 marks exact matches CORRECT and counts them per letter. Pass 2 walks
// the rest left to right: a letter that occurs in the answer and whose
// counter is still zero is WRONG_LOCATION and drives the counter negative,
// anything else is INCORRECT_LETTER. A letter therefore earns at most one
// WRONG_LOCATION, and none once it has an exact match.
func scoreGuess(answer, guess string) []Score {
	a, g := []rune(answer), []rune(guess)
	res := make([]Score, len(g))
	if answer == guess {
		for i := range res {
			res[i] = Correct
		}
		return res
	}

	marked := make(map[rune]int, len(g))
	for i := range g {
		if g[i] == a[i] {
			res[i] = Correct
			marked[g[i]]++
		}
	}

	for i, r := range g {
		if res[i] == Correct {
			continue
		}
		if strings.ContainsRune(answer, r) && marked[r] == 0 {
			res[i] = WrongLocation
			marked[r]--
		} else {
			res[i] = IncorrectLetter
		}
	}
	return res
}

// Status reports the current state.
func (g *Game) Status() Status { return g.status }

// Terminal reports whether the game is WON or LOST.
func (g *Game) Terminal() bool { return g.status.Terminal() }

// Answer returns the secret word. Use View for anything client-facing.
func (g *Game) Answer() string { return g.answer }

// Limit returns the guess limit fixed at creation.
func (g *Game) Limit() int { return g.limit }

// Remaining returns the attempts left.
func (g *Game) Remaining() int { return g.remaining }

// Guesses returns a copy of the accepted guesses.
func (g *Game) Guesses() []string { return cloneStrings(g.guesses) }

// Scores returns a copy of the score history.
func (g *Game) Scores() [][]Score { return cloneScores(g.scores) }

func cloneScores(in [][]Score) [][]Score {
	out := make([][]Score, len(in))
	for i, s := range in {
		out[i] = append([]Score(nil), s...)
	}
	return out
}
