// internal/words/words.go
//
// Word lists for the game engine.
//
// Responsibilities:
//   - Load the validity list (any accepted guess) and the common list
//     (answer candidates) from readers, files, or the embedded assets.
//   - Answer membership tests and random answer sampling by length.
//
// Lists are newline-delimited. Lines are trimmed and lowercased; blank lines
// and '#' comments are skipped. Common words are always valid guesses.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrNoWordOfLength is returned by Sample when the common list has no word
// of the requested length.
var ErrNoWordOfLength = errors.New("words: no word of requested length")

// Lexicon is an immutable pair of word lists. Safe for concurrent readers.
type Lexicon struct {
	valid  map[string]struct{} // all ∪ common
	common map[int][]string    // common words keyed by rune length
	nAll   int
	nComm  int
}

// Load builds a Lexicon from the full validity list and the common list.
func Load(all, common io.Reader) (*Lexicon, error) {
	allList, err := readWords(all)
	if err != nil {
		return nil, fmt.Errorf("words: read validity list: %w", err)
	}
	commonList, err := readWords(common)
	if err != nil {
		return nil, fmt.Errorf("words: read common list: %w", err)
	}

	lx := &Lexicon{
		valid:  make(map[string]struct{}, len(allList)+len(commonList)),
		common: make(map[int][]string),
	}
	for _, w := range allList {
		lx.valid[w] = struct{}{}
	}
	seen := make(map[string]struct{}, len(commonList))
	for _, w := range commonList {
		lx.valid[w] = struct{}{}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		n := utf8.RuneCountInString(w)
		lx.common[n] = append(lx.common[n], w)
	}
	lx.nAll = len(lx.valid)
	lx.nComm = len(seen)
	return lx, nil
}

// LoadFiles opens both lists from disk and delegates to Load.
func LoadFiles(allPath, commonPath string) (*Lexicon, error) {
	all, err := os.Open(allPath)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", allPath, err)
	}
	defer all.Close()
	common, err := os.Open(commonPath)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", commonPath, err)
	}
	defer common.Close()
	return Load(all, common)
}

// readWords scans one word per line.
func readWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// Contains reports whether word is a valid guess (case-insensitive).
func (lx *Lexicon) Contains(word string) bool {
	_, ok := lx.valid[strings.ToLower(word)]
	return ok
}

// Sample returns a uniformly random common word of exactly length runes.
func (lx *Lexicon) Sample(length int) (string, error) {
	list := lx.common[length]
	if len(list) == 0 {
		return "", fmt.Errorf("%w: %d", ErrNoWordOfLength, length)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", fmt.Errorf("words: sample: %w", err)
	}
	return list[n.Int64()], nil
}

// Common returns a copy of the common words of the given length, in load order.
func (lx *Lexicon) Common(length int) []string {
	return append([]string(nil), lx.common[length]...)
}

// Stats returns counts of loaded words: (common, all valid).
func (lx *Lexicon) Stats() (common int, all int) {
	return lx.nComm, lx.nAll
}
