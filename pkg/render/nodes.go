package render

// NodeKind tags the structural variant of a Node.
type NodeKind string

const (
	NodeParagraph NodeKind = "paragraph"
	NodeList      NodeKind = "list"
	NodeBreak     NodeKind = "break"
)

type ListKind string

const (
	ListBulleted ListKind = "bulleted"
	ListNumbered ListKind = "numbered"
)

// SpanKind tags the inline variant of a Span.
type SpanKind string

const (
	SpanPlain  SpanKind = "plain"
	SpanBold   SpanKind = "bold"
	SpanItalic SpanKind = "italic"
	SpanCode   SpanKind = "code"
	SpanLink   SpanKind = "link"
)

// Span is one run of inline text. For links Text holds the label.
type Span struct {
	Kind SpanKind `json:"kind" yaml:"kind"`
	Text string   `json:"text" yaml:"text"`
	URL  string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Node is a derived structural unit of an assistant reply.
//
// Paragraph nodes carry Spans, List nodes carry ListKind and Items, Break nodes
// carry nothing.
type Node struct {
	Kind     NodeKind `json:"kind" yaml:"kind"`
	Spans    []Span   `json:"spans,omitempty" yaml:"spans,omitempty"`
	ListKind ListKind `json:"list_kind,omitempty" yaml:"list_kind,omitempty"`
	Items    [][]Span `json:"items,omitempty" yaml:"items,omitempty"`
}

func Plain(text string) Span  { return Span{Kind: SpanPlain, Text: text} }
func Bold(text string) Span   { return Span{Kind: SpanBold, Text: text} }
func Italic(text string) Span { return Span{Kind: SpanItalic, Text: text} }
func Code(text string) Span   { return Span{Kind: SpanCode, Text: text} }

func Link(label, url string) Span {
	return Span{Kind: SpanLink, Text: label, URL: url}
}

func Paragraph(spans ...Span) Node {
	return Node{Kind: NodeParagraph, Spans: spans}
}

func List(kind ListKind, items ...[]Span) Node {
	return Node{Kind: NodeList, ListKind: kind, Items: items}
}

func Break() Node { return Node{Kind: NodeBreak} }

// PlainText flattens spans back into display text. Links render as their label.
func PlainText(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
