package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDict accepts a fixed set of words and always samples the same one.
type stubDict struct {
	words  map[string]struct{}
	sample string
	err    error
}

func newStubDict(sample string, ws ...string) *stubDict {
	d := &stubDict{words: map[string]struct{}{}, sample: sample}
	for _, w := range append(ws, sample) {
		d.words[strings.ToLower(w)] = struct{}{}
	}
	return d
}

func (d *stubDict) Contains(w string) bool {
	_, ok := d.words[strings.ToLower(w)]
	return ok
}

func (d *stubDict) Sample(length int) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	return d.sample, nil
}

var testWords = []string{
	"crank", "carry", "cadet", "catty", "frogs", "caddy", "daddy", "doubt",
	"billy", "teals", "salad", "grape", "geese", "eerie", "slate", "crane",
	"abbey", "kayak", "llama", "sassy", "puppy",
}

func newGame(t *testing.T, answer string) *Game {
	t.Helper()
	g, err := New(newStubDict(answer, testWords...), Config{Answer: answer})
	require.NoError(t, err)
	return g
}

const (
	C = Correct
	W = WrongLocation
	I = IncorrectLetter
)

func TestScoreGuess(t *testing.T) {
	cases := []struct {
		answer, guess string
		want          []Score
	}{
		{"caddy", "daddy", []Score{I, C, C, C, C}},
		{"cadet", "catty", []Score{C, C, W, I, I}},
		{"frogs", "catty", []Score{I, I, I, I, I}},
		{"daddy", "doubt", []Score{C, I, I, I, I}},
		{"crank", "billy", []Score{I, I, I, I, I}},
		{"crank", "teals", []Score{I, I, C, I, I}},
		{"crank", "salad", []Score{I, W, I, I, I}},
		{"crank", "grape", []Score{I, C, C, I, I}},
		{"crank", "carry", []Score{C, W, W, I, I}},
		{"crank", "crank", []Score{C, C, C, C, C}},
		{"geese", "eerie", []Score{I, C, I, I, C}},
		{"speed", "eerie", []Score{W, I, I, I, I}},
		{"slate", "eerie", []Score{I, I, I, I, C}},
		{"abbey", "kayak", []Score{I, W, W, I, I}},
	}
	for _, tc := range cases {
		t.Run(tc.answer+"/"+tc.guess, func(t *testing.T) {
			g := newGame(t, tc.answer)
			got, err := g.Guess(strings.ToUpper(tc.guess))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// For every letter, CORRECT + WRONG_LOCATION never exceeds its count in the
// answer, a letter gets at most one WRONG_LOCATION and only without an exact
// match, and WRONG_LOCATION goes to the leftmost candidate.
func TestScoreGuessLetterBudget(t *testing.T) {
	for _, answer := range testWords {
		for _, guess := range testWords {
			got := scoreGuess(answer, guess)
			require.Len(t, got, len(answer))

			inAnswer := map[rune]int{}
			for _, r := range answer {
				inAnswer[r]++
			}
			marked := map[rune]int{}
			correct := map[rune]int{}
			displaced := map[rune]int{}
			for i, r := range guess {
				switch got[i] {
				case Correct:
					assert.Equal(t, rune(answer[i]), r)
					correct[r]++
					marked[r]++
				case WrongLocation:
					assert.Contains(t, answer, string(r))
					displaced[r]++
					marked[r]++
				}
			}
			for r, n := range marked {
				assert.LessOrEqual(t, n, inAnswer[r], "answer=%s guess=%s letter=%c", answer, guess, r)
			}
			for r, n := range displaced {
				assert.Equal(t, 1, n, "answer=%s guess=%s letter=%c", answer, guess, r)
				assert.Zero(t, correct[r], "answer=%s guess=%s letter=%c", answer, guess, r)
			}

			// leftmost priority: no INCORRECT_LETTER precedes a WRONG_LOCATION of the same letter
			seenIncorrect := map[rune]bool{}
			for i, r := range guess {
				switch got[i] {
				case IncorrectLetter:
					seenIncorrect[r] = true
				case WrongLocation:
					assert.False(t, seenIncorrect[r], "answer=%s guess=%s pos=%d", answer, guess, i)
				}
			}
		}
	}
}

func TestGuessWinningConsumesAttempt(t *testing.T) {
	g := newGame(t, "crank")
	_, err := g.Guess("slate")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Remaining())

	got, err := g.Guess("Crank")
	require.NoError(t, err)
	assert.Equal(t, []Score{C, C, C, C, C}, got)
	assert.Equal(t, Won, g.Status())
	assert.Equal(t, 0, g.Remaining())
	assert.Equal(t, []string{"slate", "crank"}, g.Guesses())
	assert.Len(t, g.Scores(), 2)
}

func TestGuessLosesAfterLimit(t *testing.T) {
	g, err := New(newStubDict("crank", testWords...), Config{Answer: "crank", GuessLimit: 3})
	require.NoError(t, err)

	for i, w := range []string{"slate", "grape", "salad"} {
		require.Equal(t, InProgress, g.Status(), "before guess %d", i)
		_, err := g.Guess(w)
		require.NoError(t, err)
	}
	assert.Equal(t, Lost, g.Status())
	assert.Equal(t, 0, g.Remaining())

	_, err = g.Guess("crank")
	assert.ErrorIs(t, err, ErrOutOfGuesses)
	assert.Equal(t, []string{"slate", "grape", "salad"}, g.Guesses())
	assert.Len(t, g.Scores(), 3)
}

func TestGuessRejectionsDoNotMutate(t *testing.T) {
	cases := []struct {
		name  string
		guess string
		want  error
		code  Score
	}{
		{"too short", "cran", ErrInvalidGuess, InvalidGuess},
		{"too long", "cranks", ErrInvalidGuess, InvalidGuess},
		{"empty", "", ErrInvalidGuess, InvalidGuess},
		{"not a word", "zzzzz", ErrNotAWord, NotAWord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, "crank")
			before := g.ToState()

			got, err := g.Guess(tc.guess)
			assert.Nil(t, got)
			require.ErrorIs(t, err, tc.want)

			var rej *Rejection
			require.True(t, errors.As(err, &rej))
			assert.Equal(t, tc.code, rej.Code)
			assert.Equal(t, before, g.ToState())
		})
	}
}

func TestGuessAfterWinIsOutOfGuesses(t *testing.T) {
	g := newGame(t, "crank")
	_, err := g.Guess("crank")
	require.NoError(t, err)

	before := g.ToState()
	_, err = g.Guess("slate")
	assert.ErrorIs(t, err, ErrOutOfGuesses)
	assert.Equal(t, before, g.ToState())
}

func TestGuessHistoryLengthTracksAttempts(t *testing.T) {
	g := newGame(t, "crank")
	for _, w := range []string{"slate", "cran", "grape", "zzzzz", "salad"} {
		_, _ = g.Guess(w)
		assert.Len(t, g.Guesses(), g.Limit()-g.Remaining())
		assert.Len(t, g.Scores(), len(g.Guesses()))
	}
	assert.Equal(t, 3, len(g.Guesses()))
}

func TestNewSamplesAnswer(t *testing.T) {
	d := newStubDict("Crane", testWords...)
	g, err := New(d, Config{})
	require.NoError(t, err)
	assert.Equal(t, "crane", g.Answer())
	assert.Equal(t, DefaultGuessLimit, g.Limit())
	assert.Equal(t, DefaultGuessLimit, g.Remaining())
	assert.Equal(t, InProgress, g.Status())
	assert.Empty(t, g.Guesses())
}

func TestNewPropagatesSampleError(t *testing.T) {
	boom := errors.New("no word")
	d := newStubDict("crane")
	d.err = boom
	_, err := New(d, Config{WordLength: 7})
	assert.ErrorIs(t, err, boom)
}
