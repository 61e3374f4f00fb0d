package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"campus-chat/errors"
)

//go:embed wordlists/*.txt
var wordlistsFS embed.FS

// Wordlists carries the parsed blacklist plus metadata for logging.
type Wordlists struct {
	Words     []string
	Languages []string
}

// LoadWordlists parses the embedded per-language dictionaries. Each
// .txt file holds one word per line; the result is deduplicated and
// sorted so the automaton build is deterministic.
func LoadWordlists() (*Wordlists, error) {
	entries, err := fs.ReadDir(wordlistsFS, "wordlists")
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := wordlistsFS.ReadFile("wordlists/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				unique[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(unique))
	for w := range unique {
		words = append(words, w)
	}
	sort.Strings(words)

	return &Wordlists{Words: words, Languages: languages}, nil
}
