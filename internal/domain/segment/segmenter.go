// Package segment splits raw story text into addressable sentence units.
//
// The split is deterministic and total: running it twice on the same text
// yields the same units with the same IDs, every non-whitespace character
// lands in exactly one unit, and no unit is empty. Downstream components
// reference sentences only by the IDs assigned here.
package segment

import (
	"strings"
	"unicode"

	"github.com/storycurator/curator/internal/domain"
)

// terminators end a sentence when followed by whitespace and the start of a
// new sentence (or end of input).
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// isTrailer covers closing quotes and brackets that may follow a terminator
// while still belonging to the finished sentence.
func isTrailer(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

// Split segments text into sentence units with contiguous IDs starting at 1.
// Empty or whitespace-only input yields an empty slice, never an error, so
// downstream components stay total functions over "no flags, no skills".
func Split(text string) []domain.SentenceUnit {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var units []domain.SentenceUnit
	start := 0

	flush := func(end int) {
		sentence := strings.TrimSpace(string(runes[start:end]))
		if sentence != "" {
			units = append(units, domain.SentenceUnit{ID: len(units) + 1, Text: sentence})
		}
		start = end
	}

	i := 0
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		// Consume the full terminator run ("...", "?!") and any trailers.
		for i < len(runes) && isTerminator(runes[i]) {
			i++
		}
		for i < len(runes) && isTrailer(runes[i]) {
			i++
		}
		if i >= len(runes) {
			break
		}
		if !unicode.IsSpace(runes[i]) {
			continue
		}
		// Lowercase continuation after the gap suggests an abbreviation
		// ("Mr. smith" style input is rare; mid-sentence ellipses are not).
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && unicode.IsLower(runes[j]) {
			i = j
			continue
		}
		flush(i)
		i = j
		start = j
	}
	flush(len(runes))

	return units
}

// Reconstruct joins units in ID order back into a normalized document. Two
// texts that segment identically reconstruct identically, which keeps span
// excerpts stable across runs.
func Reconstruct(units []domain.SentenceUnit) string {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	return strings.Join(texts, " ")
}
