// Package render turns raw assistant text into display nodes and follow-up
// suggestion labels.
//
// Everything in this package is pure: the same input always yields the same
// Result and nothing is retained between calls, so views may re-render on every
// frame. Cache adds memoization on top for views that render often.
package render

// Result is the derived view of one assistant message.
type Result struct {
	// Message is the display text: the raw text before the suggestion marker,
	// trimmed. Copy actions use it.
	Message     string   `json:"message" yaml:"message"`
	Nodes       []Node   `json:"nodes" yaml:"nodes"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// Render extracts suggestions from raw and parses the remaining message into
// nodes. raw is sanitized first, so nothing in the Result can drive the
// terminal.
func Render(raw string) Result {
	message, suggestions := ExtractSuggestions(Sanitize(raw))
	if suggestions == nil {
		suggestions = []string{}
	}
	return Result{
		Message:     message,
		Nodes:       Blocks(message),
		Suggestions: suggestions,
	}
}
