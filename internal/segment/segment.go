// Package segment splits dialogue text into ordered sentences for
// per-sentence audio enrichment.
package segment

import (
	"regexp"
	"strings"
)

// sentencePattern matches a run of characters terminated by one or more
// sentence terminators. Abbreviation handling is intentionally naive; the
// negotiation provider is prompted to produce plain conversational prose.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Sentences splits text at sentence boundaries. The returned slice is never
// empty for non-empty input, and the concatenation of its elements equals
// the input modulo surrounding whitespace: a trailing fragment without a
// terminator is kept as the final sentence rather than dropped.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	matches := sentencePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	sentences := make([]string, 0, len(matches)+1)
	end := 0
	for _, m := range matches {
		sentence := strings.TrimSpace(text[m[0]:m[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		end = m[1]
	}

	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}

	if len(sentences) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return sentences
}
