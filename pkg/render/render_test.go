package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestRender_NoMarkerKeepsTrimmedMessage(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"plain reply",
		"  padded reply \n\n",
		"[SUGGESTION] close but not the marker",
		"- a\n- b",
	} {
		res := Render(in)
		require.Empty(t, res.Suggestions, in)
		require.Equal(t, strings.TrimSpace(in), res.Message, in)
	}
}

func TestRender_SuggestionBlock(t *testing.T) {
	raw := "We shoot weddings and corporate events.\n\n" +
		"[SUGGESTIONS]\n" +
		"- What does a wedding package cost?\n" +
		"• Can I see your portfolio?\n" +
		"\n" +
		"3) " + strings.Repeat("x", 60) + "\n" +
		"2. How do I book a date?\n" +
		"* One more that is dropped\n"

	res := Render(raw)
	require.Equal(t, "We shoot weddings and corporate events.", res.Message)
	require.Equal(t, []string{
		"What does a wedding package cost?",
		"Can I see your portfolio?",
		"How do I book a date?",
	}, res.Suggestions)
	require.Equal(t, []Node{
		Paragraph(Plain("We shoot weddings and corporate events.")),
	}, res.Nodes)
}

func TestRender_SuggestionInvariants(t *testing.T) {
	tails := []string{
		"",
		"\n\n\n",
		"\n- a\n- b\n- c\n- d\n- e",
		"\n1. " + strings.Repeat("é", 59) + "\n2. " + strings.Repeat("é", 60),
		"\n-   \n*\n•  \n",
		"\nsame\nsame\nsame\nsame",
	}
	for _, tail := range tails {
		res := Render("body " + SuggestionMarker + tail)
		require.LessOrEqual(t, len(res.Suggestions), MaxSuggestions)
		for _, s := range res.Suggestions {
			require.NotEmpty(t, s)
			require.Less(t, utf8.RuneCountInString(s), MaxSuggestionLength)
		}
	}
}

func TestRender_MarkerWithoutSurvivingLinesIsNotAnError(t *testing.T) {
	res := Render("Thanks!\n[SUGGESTIONS]\n- \n" + strings.Repeat("y", 80))
	require.Equal(t, "Thanks!", res.Message)
	require.Empty(t, res.Suggestions)
}

func TestRender_DuplicateSuggestionsAreKept(t *testing.T) {
	res := Render("ok [SUGGESTIONS]\n- Pricing\n- Pricing")
	require.Equal(t, []string{"Pricing", "Pricing"}, res.Suggestions)
}

func TestBlocks_BulletedOnly(t *testing.T) {
	nodes := Blocks("- a\n- b\n- c")
	require.Equal(t, []Node{
		List(ListBulleted, []Span{Plain("a")}, []Span{Plain("b")}, []Span{Plain("c")}),
	}, nodes)
}

func TestBlocks_ParagraphListParagraph(t *testing.T) {
	nodes := Blocks("Hello\n- one\n- two\nBye")
	require.Equal(t, []Node{
		Paragraph(Plain("Hello")),
		List(ListBulleted, []Span{Plain("one")}, []Span{Plain("two")}),
		Paragraph(Plain("Bye")),
	}, nodes)
}

func TestBlocks_SwitchingListKindFlushes(t *testing.T) {
	nodes := Blocks("1. first\n2) second\n- bullet\n* star")
	require.Equal(t, []Node{
		List(ListNumbered, []Span{Plain("first")}, []Span{Plain("second")}),
		List(ListBulleted, []Span{Plain("bullet")}, []Span{Plain("star")}),
	}, nodes)
}

func TestBlocks_BlankLinesEmitBreaks(t *testing.T) {
	nodes := Blocks("a\n\n- x\n\nb\n")
	require.Equal(t, []Node{
		Paragraph(Plain("a")),
		Break(),
		List(ListBulleted, []Span{Plain("x")}),
		Break(),
		Paragraph(Plain("b")),
	}, nodes)
}

func TestBlocks_ListItemsAreInlineFormatted(t *testing.T) {
	nodes := Blocks("- **Drone** footage\n- see [reel](https://reel.test)")
	require.Equal(t, []Node{
		List(ListBulleted,
			[]Span{Bold("Drone"), Plain(" footage")},
			[]Span{Plain("see "), Link("reel", "https://reel.test")},
		),
	}, nodes)
}

func TestBlocks_BareMarkersAddNoItems(t *testing.T) {
	nodes := Blocks("- \n- a\n1. \n-  \t")
	require.Equal(t, []Node{
		List(ListBulleted, []Span{Plain("a")}),
	}, nodes)
}

func TestBlocks_BoldLineIsNotABullet(t *testing.T) {
	nodes := Blocks("**Note:** bring ID")
	require.Equal(t, []Node{
		Paragraph(Bold("Note:"), Plain(" bring ID")),
	}, nodes)
}

func TestInline_AllSpanKinds(t *testing.T) {
	spans := Inline("**bold** and *italic* and `code` and [go](https://x.test)")
	require.Equal(t, []Span{
		Bold("bold"),
		Plain(" and "),
		Italic("italic"),
		Plain(" and "),
		Code("code"),
		Plain(" and "),
		Link("go", "https://x.test"),
	}, spans)
}

func TestInline_NoNesting(t *testing.T) {
	spans := Inline("**bold with `code` inside**")
	require.Equal(t, []Span{Bold("bold with `code` inside")}, spans)
}

func TestInline_ArithmeticStaysPlain(t *testing.T) {
	require.Equal(t, []Span{Plain("2 * 3 * 4")}, Inline("2 * 3 * 4"))
}

func TestInline_UnclosedMarkersArePlain(t *testing.T) {
	require.Equal(t, []Span{Plain("**half and [label](")}, Inline("**half and [label]("))
}

func TestRender_IsPure(t *testing.T) {
	raw := "Hi *there*\n- a\n[SUGGESTIONS]\n- next"
	require.Equal(t, Render(raw), Render(raw))
}

func TestRender_StripsTerminalControls(t *testing.T) {
	raw := "Hello \x1b[2J\x1b[H there\x07\n- item\r\n[SUGGESTIONS]\n- clear \x1b]52;c;aGk=\x07 me\n- \u009b31mred"
	res := Render(raw)

	require.Equal(t, "Hello  there\n- item", res.Message)
	require.Equal(t, []string{"clear  me", "31mred"}, res.Suggestions)
	for _, n := range res.Nodes {
		for _, s := range append(n.Spans, flatten(n.Items)...) {
			require.NotContains(t, s.Text, "\x1b")
			require.NotContains(t, s.Text, "\x07")
		}
	}
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "a\tb\nc", Sanitize("a\tb\r\nc"))
	require.Equal(t, "bold", Sanitize("\x1b[1mbold\x1b[0m"))
	require.Equal(t, "", Sanitize("\x1bP1$r\x1b\\\x00\x7f"))
	require.Equal(t, "café ✓", Sanitize("café ✓"))
}

func flatten(items [][]Span) []Span {
	var out []Span
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func TestCache_MemoizesByText(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	first := c.Render("one")
	require.Equal(t, Render("one"), first)
	require.Equal(t, 1, c.Len())

	c.Render("one")
	require.Equal(t, 1, c.Len())

	c.Render("two")
	c.Render("three")
	require.Equal(t, 2, c.Len())

	var nilCache *Cache
	require.Equal(t, Render("x"), nilCache.Render("x"))
}

func TestPlainText(t *testing.T) {
	require.Equal(t, "see reel now", PlainText([]Span{Plain("see "), Link("reel", "https://r.test"), Plain(" now")}))
}
