// Package assets embeds the default word lists so the server runs even when
// no list files are configured.
//
//   - wordlist.txt: every word accepted as a guess.
//   - common5.txt:  common words eligible as answers.
package assets

import (
	"embed"
	"io"
)

//go:embed wordlist.txt common5.txt
var FS embed.FS

const (
	allName    = "wordlist.txt"
	commonName = "common5.txt"
)

// AllWords opens the embedded validity list. Callers close it.
func AllWords() (io.ReadCloser, error) {
	return FS.Open(allName)
}

// CommonWords opens the embedded answer list. Callers close it.
func CommonWords() (io.ReadCloser, error) {
	return FS.Open(commonName)
}
