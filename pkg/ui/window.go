package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/go-go-golems/concierge/pkg/locale"
	"github.com/go-go-golems/concierge/pkg/render"
	"github.com/rs/zerolog/log"
)

// Conversation is the part of chat.Controller the views drive.
type Conversation interface {
	Submit(ctx context.Context, text string) bool
	QuickAction(ctx context.Context, prompt string) bool
	NewChat(ctx context.Context) error
	Snapshot() chat.Snapshot
}

var _ Conversation = &chat.Controller{}

const (
	DefaultInputLimit = 500
	maxComposerRows   = 6
	copiedFor         = 2 * time.Second
)

type WindowOptions struct {
	Catalog    locale.Catalog
	Cache      *render.Cache
	InputLimit int
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// Window is the open conversation view: message list, composer and status.
type Window struct {
	ctx  context.Context
	conv Conversation
	opts WindowOptions
	keys KeyMap

	composer textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	spinning bool

	width  int
	height int

	snap       chat.Snapshot
	selectedID string
	copiedID   string
	copyToken  int
}

func (o WindowOptions) withDefaults() WindowOptions {
	if o.InputLimit <= 0 {
		o.InputLimit = DefaultInputLimit
	}
	if o.Cache == nil {
		// a nil cache still renders, just without memoizing
		o.Cache, _ = render.NewCache(0)
	}
	if o.Clipboard == nil {
		o.Clipboard = clipboard.WriteAll
	}
	if o.Catalog.Language == "" {
		o.Catalog = locale.CatalogFor(locale.English)
	}
	return o
}

func NewWindow(ctx context.Context, conv Conversation, opts WindowOptions) Window {
	opts = opts.withDefaults()
	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = opts.Catalog.Placeholder
	ta.CharLimit = opts.InputLimit
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	// no line cap; layout clamps the visible rows and the textarea scrolls
	ta.MaxHeight = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	vp := viewport.New(80, 10)
	vp.KeyMap = viewport.KeyMap{PageUp: keys.PageUp, PageDown: keys.PageDown}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	w := Window{
		ctx:      ctx,
		conv:     conv,
		opts:     opts,
		keys:     keys,
		composer: ta,
		viewport: vp,
		spinner:  sp,
		width:    80,
		height:   24,
	}
	_ = w.refresh()
	return w
}

func (w Window) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if w.spinning {
		cmds = append(cmds, w.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (w Window) Update(msg tea.Msg) (Window, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
		w.layout()
		w.setContent(true)
		return w, nil

	case EventMsg:
		return w, w.refresh()

	case newChatDoneMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Str("component", "ui").Msg("new chat failed")
		}
		w.selectedID, w.copiedID = "", ""
		return w, w.refresh()

	case copiedExpiredMsg:
		if msg.token == w.copyToken {
			w.copiedID = ""
			w.setContent(false)
		}
		return w, nil

	case spinner.TickMsg:
		if w.snap.State != chat.StateSubmitted {
			w.spinning = false
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case tea.KeyMsg:
		if cmd, ok := w.handleKey(msg); ok {
			return w, cmd
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	w.composer, cmd = w.composer.Update(msg)
	cmds = append(cmds, cmd)
	w.viewport, cmd = w.viewport.Update(msg)
	cmds = append(cmds, cmd)
	w.layout()
	return w, tea.Batch(cmds...)
}

func (w *Window) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, w.keys.Close):
		return func() tea.Msg { return CloseMsg{} }, true
	case key.Matches(msg, w.keys.Submit):
		return w.submitComposer(), true
	case key.Matches(msg, w.keys.Copy):
		return w.copySelected(), true
	case key.Matches(msg, w.keys.PrevMsg):
		w.moveSelection(-1)
		return nil, true
	case key.Matches(msg, w.keys.NextMsg):
		w.moveSelection(1)
		return nil, true
	case key.Matches(msg, w.keys.NewChat):
		ctx, conv := w.ctx, w.conv
		return func() tea.Msg { return newChatDoneMsg{err: conv.NewChat(ctx)} }, true
	}
	if i := w.keys.pickIndex(msg); i >= 0 {
		return w.pick(i), true
	}
	return nil, false
}

func (w *Window) submitComposer() tea.Cmd {
	text := w.composer.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// a busy controller rejects the submit; the draft stays in the composer
	if !w.conv.Submit(w.ctx, text) {
		return nil
	}
	w.composer.Reset()
	w.selectedID = ""
	w.layout()
	return w.refresh()
}

// pick activates quick action i on an empty conversation, otherwise
// suggestion chip i.
func (w *Window) pick(i int) tea.Cmd {
	if len(w.snap.Messages) == 0 {
		qas := w.opts.Catalog.QuickActions
		if i >= len(qas) || !w.conv.QuickAction(w.ctx, qas[i].Prompt) {
			return nil
		}
		return w.refresh()
	}
	chips := w.Chips()
	if i >= len(chips) || !w.conv.Submit(w.ctx, chips[i]) {
		return nil
	}
	w.selectedID = ""
	return w.refresh()
}

func (w *Window) copySelected() tea.Cmd {
	idx := w.selectedIndex()
	if idx < 0 {
		return nil
	}
	m := w.snap.Messages[idx]
	text := w.opts.Cache.Render(m.Text).Message
	if err := w.opts.Clipboard(text); err != nil {
		log.Warn().Err(err).Str("component", "ui").Msg("copy to clipboard failed")
		return nil
	}
	w.copiedID = m.ID
	w.copyToken++
	token := w.copyToken
	w.setContent(false)
	return tea.Tick(copiedFor, func(time.Time) tea.Msg {
		return copiedExpiredMsg{token: token}
	})
}

func (w *Window) assistantIndexes() []int {
	var out []int
	for i, m := range w.snap.Messages {
		if m.Role == chat.RoleAssistant {
			out = append(out, i)
		}
	}
	return out
}

// selectedIndex is the message the copy action targets, by default the
// latest assistant message.
func (w *Window) selectedIndex() int {
	if w.selectedID != "" {
		for i, m := range w.snap.Messages {
			if m.ID == w.selectedID && m.Role == chat.RoleAssistant {
				return i
			}
		}
	}
	return w.snap.LatestAssistant()
}

func (w *Window) moveSelection(delta int) {
	idxs := w.assistantIndexes()
	if len(idxs) == 0 {
		return
	}
	cur := len(idxs) - 1
	sel := w.selectedIndex()
	for i, idx := range idxs {
		if idx == sel {
			cur = i
		}
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	if cur >= len(idxs) {
		cur = len(idxs) - 1
	}
	w.selectedID = w.snap.Messages[idxs[cur]].ID
	w.setContent(false)
}

// Chips returns the suggestion labels shown under the latest assistant
// message. There are none while a request is open.
func (w Window) Chips() []string {
	if w.snap.Busy() {
		return nil
	}
	n := len(w.snap.Messages)
	if n == 0 || w.snap.Messages[n-1].Role != chat.RoleAssistant {
		return nil
	}
	return w.opts.Cache.Render(w.snap.Messages[n-1].Text).Suggestions
}

// Value is the current composer text.
func (w Window) Value() string {
	return w.composer.Value()
}

func (w *Window) refresh() tea.Cmd {
	if w.conv != nil {
		w.snap = w.conv.Snapshot()
	}
	if w.selectedIndex() < 0 {
		w.selectedID = ""
	}
	w.layout()
	w.setContent(true)
	if w.snap.State == chat.StateSubmitted && !w.spinning {
		w.spinning = true
		return w.spinner.Tick
	}
	return nil
}

func (w *Window) layout() {
	rows := w.composer.LineCount()
	if rows < 1 {
		rows = 1
	}
	if rows > maxComposerRows {
		rows = maxComposerRows
	}
	w.composer.SetWidth(w.width)
	w.composer.SetHeight(rows)

	// header, composer, help line and one spacer
	h := w.height - 1 - rows - 1 - 1
	if w.snap.State == chat.StateError {
		h--
	}
	if h < 3 {
		h = 3
	}
	w.viewport.Width = w.width
	w.viewport.Height = h
}

func (w *Window) setContent(scroll bool) {
	w.viewport.SetContent(w.content())
	if scroll {
		w.viewport.GotoBottom()
	}
}

func (w *Window) content() string {
	cat := w.opts.Catalog
	width := w.width - 2
	if len(w.snap.Messages) == 0 {
		var chips []string
		for i, qa := range cat.QuickActions {
			chips = append(chips, chipKeyStyle.Render(fmt.Sprintf("alt+%d", i+1))+chipStyle.Render(qa.Label))
		}
		return strings.Join([]string{
			welcomeStyle.Render(cat.Welcome),
			cat.WelcomeHint,
			"",
			lipgloss.JoinHorizontal(lipgloss.Center, chips...),
		}, "\n")
	}

	selected := w.selectedIndex()
	chips := w.Chips()
	var blocks []string
	for i, m := range w.snap.Messages {
		if m.Role == chat.RoleUser {
			body := lipgloss.NewStyle().Width(width).Render(userTextStyle.Render(render.Sanitize(m.Text)))
			blocks = append(blocks, userLabelStyle.Render("›")+" "+indent(body))
			continue
		}

		res := w.opts.Cache.Render(m.Text)
		gutter := plainGutter.String()
		if i == selected {
			gutter = selectedGutter.String()
		}
		var lines []string
		lines = append(lines, botLabelStyle.Render(cat.Title))
		lines = append(lines, strings.Split(RenderNodes(res.Nodes, width), "\n")...)
		if m.ID == w.copiedID {
			lines = append(lines, copiedStyle.Render("✓ "+cat.Copied))
		}
		for j := range lines {
			lines[j] = gutter + " " + lines[j]
		}
		if i == len(w.snap.Messages)-1 && len(chips) > 0 {
			var rendered []string
			for k, c := range chips {
				rendered = append(rendered, chipKeyStyle.Render(fmt.Sprintf("alt+%d", k+1))+chipStyle.Render(c))
			}
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Center, rendered...))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// indent aligns continuation lines with the text after the "› " label.
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

func (w Window) View() string {
	cat := w.opts.Catalog
	header := titleStyle.Render(cat.Title)
	if w.snap.State == chat.StateSubmitted {
		header += "  " + w.spinner.View() + statusStyle.Render(cat.Thinking)
	}
	parts := []string{header, w.viewport.View()}
	if w.snap.State == chat.StateError {
		parts = append(parts, errorStyle.Render("⚠ "+cat.ErrorBanner))
	}
	parts = append(parts, "", w.composer.View(), helpStyle.Render(cat.Help))
	return strings.Join(parts, "\n")
}
