// internal/game/state.go
//
// Persisted record and client view of a game.
//
// State is the one canonical record every store writes. FromState refuses
// incomplete or inconsistent records instead of filling in defaults.

package game

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrCorruptState is wrapped by every FromState failure.
var ErrCorruptState = errors.New("game: corrupt persisted state")

// State is the flat, serializable form of a Game.
type State struct {
	Answer           string    `json:"answer"`
	NumberOfGuesses  int       `json:"number_of_guesses"`
	GuessesRemaining int       `json:"guesses_remaining"`
	Guesses          []string  `json:"guesses"`
	Scores           [][]Score `json:"scores"`
	Status           Status    `json:"game_status,omitempty"`
}

// ToState snapshots the game. The result shares no memory with g.
// A status that was derived on load is omitted again, so a record without
// game_status round-trips unchanged.
func (g *Game) ToState() State {
	st := State{
		Answer:           g.answer,
		NumberOfGuesses:  g.limit,
		GuessesRemaining: g.remaining,
		Guesses:          cloneStrings(g.guesses),
		Scores:           cloneScores(g.scores),
		Status:           g.status,
	}
	if g.statusDerived {
		st.Status = ""
	}
	return st
}

// FromState rehydrates a Game. A missing Status is derived from the other
// fields; a present one must agree with them.
func FromState(dict Dictionary, st State) (*Game, error) {
	if dict == nil {
		return nil, errors.New("game: nil dictionary")
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	status, derived := st.Status, false
	if status == "" {
		status, derived = st.derivedStatus(), true
	}
	if err := st.checkStatus(status); err != nil {
		return nil, err
	}
	return &Game{
		dict:      dict,
		answer:    st.Answer,
		limit:     st.NumberOfGuesses,
		remaining: st.GuessesRemaining,
		guesses:   cloneStrings(st.Guesses),
		scores:    cloneScores(st.Scores),
		status:    status,

		statusDerived: derived,
	}, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}

// validate checks field presence and shape.
func (st State) validate() error {
	switch {
	case st.Answer == "":
		return corrupt("missing answer")
	case st.Answer != strings.ToLower(st.Answer):
		return corrupt("answer is not lowercase")
	case st.NumberOfGuesses <= 0:
		return corrupt("number_of_guesses must be positive, got %d", st.NumberOfGuesses)
	case st.GuessesRemaining < 0 || st.GuessesRemaining > st.NumberOfGuesses:
		return corrupt("guesses_remaining %d outside [0,%d]", st.GuessesRemaining, st.NumberOfGuesses)
	case st.Guesses == nil:
		return corrupt("missing guesses")
	case st.Scores == nil:
		return corrupt("missing scores")
	case len(st.Guesses) != len(st.Scores):
		return corrupt("%d guesses but %d scores", len(st.Guesses), len(st.Scores))
	case len(st.Guesses) > st.NumberOfGuesses:
		return corrupt("%d guesses exceed limit %d", len(st.Guesses), st.NumberOfGuesses)
	case st.Status != "" && !st.Status.valid():
		return corrupt("unknown game_status %q", st.Status)
	}

	n := utf8.RuneCountInString(st.Answer)
	for i, guess := range st.Guesses {
		if utf8.RuneCountInString(guess) != n || guess != strings.ToLower(guess) {
			return corrupt("guess %d %q does not fit answer length %d", i, guess, n)
		}
		if len(st.Scores[i]) != n {
			return corrupt("score %d has %d entries, want %d", i, len(st.Scores[i]), n)
		}
		for _, s := range st.Scores[i] {
			if !s.letterScore() {
				return corrupt("score %d holds %q", i, s)
			}
		}
	}
	return nil
}

func (st State) derivedStatus() Status {
	if st.GuessesRemaining == 0 {
		if k := len(st.Guesses); k > 0 && st.Guesses[k-1] == st.Answer {
			return Won
		}
		return Lost
	}
	return InProgress
}

// checkStatus enforces the history/attempt invariants for status.
func (st State) checkStatus(status Status) error {
	k := len(st.Guesses)
	for i, guess := range st.Guesses {
		if guess == st.Answer && !(status == Won && i == k-1) {
			return corrupt("answer guessed at %d but game is %s", i, status)
		}
	}
	switch status {
	case InProgress:
		if st.GuessesRemaining == 0 {
			return corrupt("in progress with no guesses remaining")
		}
		if k != st.NumberOfGuesses-st.GuessesRemaining {
			return corrupt("%d guesses recorded, %d attempts consumed", k, st.NumberOfGuesses-st.GuessesRemaining)
		}
	case Won:
		if st.GuessesRemaining != 0 || k == 0 || st.Guesses[k-1] != st.Answer {
			return corrupt("won without a final correct guess")
		}
	case Lost:
		if st.GuessesRemaining != 0 || k != st.NumberOfGuesses {
			return corrupt("lost with %d of %d guesses used", k, st.NumberOfGuesses)
		}
	}
	return nil
}

// View is the client-facing projection. Answer is nil until the game ends.
type View struct {
	Status           Status    `json:"game_status"`
	Answer           *string   `json:"answer"`
	WordLength       int       `json:"word_length"`
	NumberOfGuesses  int       `json:"number_of_guesses"`
	GuessesRemaining int       `json:"guesses_remaining"`
	Guesses          []string  `json:"guesses"`
	Scores           [][]Score `json:"scores"`
}

// View builds the public view of g.
func (g *Game) View() View {
	v := View{
		Status:           g.status,
		WordLength:       utf8.RuneCountInString(g.answer),
		NumberOfGuesses:  g.limit,
		GuessesRemaining: g.remaining,
		Guesses:          cloneStrings(g.guesses),
		Scores:           cloneScores(g.scores),
	}
	if g.status.Terminal() {
		ans := g.answer
		v.Answer = &ans
	}
	return v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
