package render

import (
	"regexp"
	"strings"
)

var (
	bulletLine   = regexp.MustCompile(`^\s*[-*•]\s+(.*)$`)
	numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s+(.*)$`)
)

type blockState int

const (
	stateNoList blockState = iota
	stateInList
)

// blockParser is the two-state machine behind Blocks. It is either outside a
// list or collecting items of exactly one ListKind; flush is the only way back.
type blockParser struct {
	state blockState
	kind  ListKind
	items [][]Span
	nodes []Node
}

func (p *blockParser) flush() {
	if p.state == stateInList && len(p.items) > 0 {
		p.nodes = append(p.nodes, List(p.kind, p.items...))
	}
	p.state = stateNoList
	p.kind = ""
	p.items = nil
}

func (p *blockParser) item(kind ListKind, text string) {
	// a bare marker adds nothing to the list
	if strings.TrimSpace(text) == "" {
		return
	}
	if p.state == stateInList && p.kind != kind {
		p.flush()
	}
	p.state = stateInList
	p.kind = kind
	p.items = append(p.items, Inline(strings.TrimSpace(text)))
}

// Blocks parses message text line by line into render nodes.
func Blocks(message string) []Node {
	if message == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	p := &blockParser{}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			p.flush()
			if i < len(lines)-1 {
				p.nodes = append(p.nodes, Break())
			}
			continue
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			p.item(ListBulleted, m[1])
			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			p.item(ListNumbered, m[1])
			continue
		}
		p.flush()
		p.nodes = append(p.nodes, Paragraph(Inline(strings.TrimSpace(line))...))
	}
	p.flush()
	return p.nodes
}
