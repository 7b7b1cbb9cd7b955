// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Score: per-letter result of a guess, plus the rejection codes.
//   - Status: coarse game state (in progress / won / lost).
//   - Game: state for a single in-progress or finished game.

package game

import "fmt"

// Score is the wire-level vocabulary for guess feedback. The first three
// values classify a letter position; the rest name a rejected guess.
type Score string

const (
	IncorrectLetter Score = "INCORRECT_LETTER" // letter not available in the answer
	WrongLocation   Score = "WRONG_LOCATION"   // letter in the answer, elsewhere
	Correct         Score = "CORRECT"          // letter in the right position

	InvalidGuess Score = "INVALID_GUESS"  // wrong length
	OutOfGuesses Score = "OUT_OF_GUESSES" // game already finished
	NotAWord     Score = "NOT_A_WORD"     // not in the dictionary
)

// letterScore reports whether s is a per-position classification.
func (s Score) letterScore() bool {
	return s == IncorrectLetter || s == WrongLocation || s == Correct
}

// Status is the game state machine. WON and LOST are absorbing.
type Status string

const (
	InProgress Status = "IN_PROGRESS"
	Won        Status = "WON"
	Lost       Status = "LOST"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s == Won || s == Lost }

func (s Status) valid() bool { return s == InProgress || s.Terminal() }

// Dictionary is what the engine needs from a word list.
// *words.Lexicon satisfies it.
type Dictionary interface {
	Contains(word string) bool
	Sample(length int) (string, error)
}

// Rejection is returned by Guess when a guess is refused. State is untouched.
type Rejection struct {
	Code Score
}

func (r *Rejection) Error() string { return fmt.Sprintf("game: guess rejected: %s", r.Code) }

// Rejection sentinels, comparable with errors.Is.
var (
	ErrOutOfGuesses error = &Rejection{Code: OutOfGuesses}
	ErrInvalidGuess error = &Rejection{Code: InvalidGuess}
	ErrNotAWord     error = &Rejection{Code: NotAWord}
)

// Game holds the state of a single game.
type Game struct {
	dict      Dictionary
	answer    string    // lowercase, fixed at creation
	limit     int       // guess limit, fixed at creation
	remaining int       // attempts left; 0 once terminal
	guesses   []string  // accepted guesses, lowercase
	scores    [][]Score // parallel to guesses
	status    Status

	// status was derived from a record that carried none; ToState leaves it
	// out again until the game changes.
	statusDerived bool
}
