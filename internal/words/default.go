// internal/words/default.go
//
// Process-wide Lexicon.
// Responsibilities:
//   - Load the word lists once per process (sync.Once).
//   - Pick the source: files on disk, or the embedded assets.
//   - Hand the shared Lexicon to callers via Default.

package words

import (
	"errors"
	"sync"

	"github.com/robalobadob/wordgame/assets"
)

var (
	initOnce   sync.Once
	defaultLex *Lexicon
	initialErr error
)

// Init loads the process-wide Lexicon exactly once.
//
// Later calls return the first call's result regardless of arguments.
func Init(allPath, commonPath string) error {
	initOnce.Do(func() {
		defaultLex, initialErr = loadConfigured(allPath, commonPath)
	})
	return initialErr
}

// loadConfigured reads both lists from disk when both paths are set. A single
// path serves as both lists. With no paths the embedded assets are used.
func loadConfigured(allPath, commonPath string) (*Lexicon, error) {
	var (
		lx  *Lexicon
		err error
	)
	switch {
	case allPath != "" && commonPath != "":
		lx, err = LoadFiles(allPath, commonPath)
	case allPath != "":
		lx, err = LoadFiles(allPath, allPath)
	case commonPath != "":
		lx, err = LoadFiles(commonPath, commonPath)
	default:
		lx, err = loadEmbedded()
	}
	if err != nil {
		return nil, err
	}
	if lx.nComm == 0 {
		return nil, errors.New("words: common list is empty")
	}
	return lx, nil
}

// Default returns the Lexicon loaded by Init, loading the embedded lists on
// first use if Init was never called. It is nil only if that load failed.
func Default() *Lexicon {
	_ = Init("", "")
	return defaultLex
}

func loadEmbedded() (*Lexicon, error) {
	all, err := assets.AllWords()
	if err != nil {
		return nil, err
	}
	defer all.Close()
	common, err := assets.CommonWords()
	if err != nil {
		return nil, err
	}
	defer common.Close()
	return Load(all, common)
}
