// Package moderation censors forbidden words in chat messages before
// they are broadcast.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden patterns with a replacement rune. Matching
// runs over a normalized view of the text (lowercased, leet-speak
// folded, punctuation stripped) so "b.a-d" still hits "bad", while the
// replacement is applied to the original runes to preserve spacing.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// mapping links each normalized rune back to its original position.
type mapping struct {
	runes   []rune
	origIdx []int
}

// NewModerator builds the Aho-Corasick automaton over the normalized
// word list. Building is the expensive part; do it once at startup.
func NewModerator(words []string, replacement rune) (Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalize(word).runes
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every forbidden span in text with the replacement
// rune. It reports whether anything was masked.
func (m *Moderator) Censor(text string) (string, bool) {
	view := normalize(text)
	if len(view.runes) == 0 {
		return text, false
	}

	spans := m.matcher.MultiPatternSearch(view.runes, false)
	if len(spans) == 0 {
		return text, false
	}

	out := []rune(text)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(view.origIdx) {
			continue
		}
		// Mask the original span including any punctuation the
		// normalization skipped in between.
		for i := view.origIdx[start]; i <= view.origIdx[end-1]; i++ {
			out[i] = m.replacement
		}
	}
	return string(out), true
}

// normalize lowercases, folds leet speak, drops punctuation and spaces,
// and records where each surviving rune came from.
func normalize(text string) mapping {
	orig := []rune(text)
	view := mapping{
		runes:   make([]rune, 0, len(orig)),
		origIdx: make([]int, 0, len(orig)),
	}
	for i, r := range orig {
		folded := foldLeet(r)
		if unicode.IsPunct(folded) || unicode.IsSpace(folded) || unicode.IsSymbol(folded) {
			continue
		}
		view.runes = append(view.runes, unicode.ToLower(folded))
		view.origIdx = append(view.origIdx, i)
	}
	return view
}

// foldLeet maps the usual digit substitutions back to letters.
func foldLeet(r rune) rune {
	switch r {
	case '4':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
