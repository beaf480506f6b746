package render

import "regexp"

// inlinePattern matches, in priority order, **bold**, *italic*, `code` and
// [label](url). Italic bodies may not start or end with whitespace so that
// arithmetic like "2 * 3 * 4" stays plain.
var inlinePattern = regexp.MustCompile(
	`\*\*([^*]+?)\*\*` +
		`|\*([^\s*](?:[^*]*?[^\s*])?)\*` +
		"|`([^`]+)`" +
		`|\[([^\]]+)\]\(([^)\s]+)\)`,
)

// Inline scans line once, left to right, and returns its spans. Matches are
// not nested: the body of a bold span is never scanned again.
func Inline(line string) []Span {
	if line == "" {
		return nil
	}
	matches := inlinePattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return []Span{Plain(line)}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, Plain(line[last:m[0]]))
		}
		switch {
		case m[2] >= 0:
			spans = append(spans, Bold(line[m[2]:m[3]]))
		case m[4] >= 0:
			spans = append(spans, Italic(line[m[4]:m[5]]))
		case m[6] >= 0:
			spans = append(spans, Code(line[m[6]:m[7]]))
		case m[8] >= 0:
			spans = append(spans, Link(line[m[8]:m[9]], line[m[10]:m[11]]))
		}
		last = m[1]
	}
	if last < len(line) {
		spans = append(spans, Plain(line[last:]))
	}
	return spans
}
