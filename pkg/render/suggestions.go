package render

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// SuggestionMarker separates the reply body from its follow-up suggestions.
	SuggestionMarker = "[SUGGESTIONS]"

	MaxSuggestions = 3
	// MaxSuggestionLength is exclusive: labels of this many runes are dropped.
	MaxSuggestionLength = 60
)

var suggestionPrefix = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s*`)

// ExtractSuggestions splits raw assistant text at the first SuggestionMarker.
// It returns the trimmed message and at most MaxSuggestions labels in source
// order. A marker without usable lines yields no suggestions. Labels are not
// de-duplicated.
func ExtractSuggestions(raw string) (string, []string) {
	idx := strings.Index(raw, SuggestionMarker)
	if idx < 0 {
		return strings.TrimSpace(raw), nil
	}
	message := strings.TrimSpace(raw[:idx])
	tail := raw[idx+len(SuggestionMarker):]

	var out []string
	for _, line := range strings.Split(tail, "\n") {
		if len(out) == MaxSuggestions {
			break
		}
		label := strings.TrimSpace(suggestionPrefix.ReplaceAllString(line, ""))
		if label == "" || utf8.RuneCountInString(label) >= MaxSuggestionLength {
			continue
		}
		out = append(out, label)
	}
	return message, out
}
