// Package moderation masks censored words in message content before the
// message is stored or broadcast. Matching runs on a normalized view of
// the text (lowercased, leet speak folded, punctuation stripped) so that
// obfuscated spellings are still caught, while the replacement is applied
// to the original runes to preserve spacing.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"chat-hub/errors"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton from the word list.
// Words are normalized the same way as inputs, so the list may contain
// plain spellings only.
func NewModerator(words []string, replacement rune, log *slog.Logger) (Moderator, error) {
	if len(words) == 0 {
		return Moderator{}, errors.ErrEmptyCensoredWords
	}
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if norm := foldRunes([]rune(word)); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement, log: log}, nil
}

// Censor replaces every span matching a censored word with the replacement
// rune and returns the list of normalized words that were found.
// The zero Moderator passes content through untouched.
func (m Moderator) Censor(original string) (string, []string) {
	if m.matcher == nil {
		return original, nil
	}

	origRunes := []rune(original)
	normalized, origIdx := fold(origRunes)
	if len(normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	found := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		// Mask the original span, including any noise characters the
		// normalization skipped between the first and last matched rune.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes), found
}

// fold builds the normalized rune stream and, for each normalized rune,
// the index of the original rune it came from.
func fold(origRunes []rune) ([]rune, []int) {
	normalized := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))
	for i, r := range origRunes {
		folded := foldRune(r)
		if isNoise(folded) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

func foldRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		folded := foldRune(r)
		if isNoise(folded) {
			continue
		}
		out = append(out, unicode.ToLower(folded))
	}
	return out
}

// foldRune maps common leet speak characters back to their standard
// alphabet counterparts.
func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters ignored during the matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
