package ui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/go-go-golems/concierge/pkg/devserver"
	"github.com/go-go-golems/concierge/pkg/events"
	"github.com/go-go-golems/concierge/pkg/locale"
	"github.com/go-go-golems/concierge/pkg/render"
	"github.com/go-go-golems/concierge/pkg/session"
	"github.com/go-go-golems/concierge/pkg/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeConv struct {
	snap       chat.Snapshot
	busy       bool
	submitted  []string
	quick      []string
	newChats   int
	sessionErr error
}

func (f *fakeConv) Submit(_ context.Context, text string) bool {
	if f.busy {
		return false
	}
	f.submitted = append(f.submitted, text)
	return true
}

func (f *fakeConv) QuickAction(_ context.Context, prompt string) bool {
	if f.busy {
		return false
	}
	f.quick = append(f.quick, prompt)
	return true
}

func (f *fakeConv) NewChat(context.Context) error {
	f.newChats++
	f.snap = chat.Snapshot{State: chat.StateIdle}
	return nil
}

func (f *fakeConv) Snapshot() chat.Snapshot { return f.snap }

func (f *fakeConv) EnsureSession(context.Context) (string, error) {
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return "tok-1", nil
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyAltEnter = tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyCopy     = tea.KeyMsg{Type: tea.KeyCtrlY}
	keyNewChat  = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyToggle   = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyQuit     = tea.KeyMsg{Type: tea.KeyCtrlC}
	keyAltUp    = tea.KeyMsg{Type: tea.KeyUp, Alt: true}
)

func altDigit(d rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{d}, Alt: true}
}

func typeText(w Window, s string) Window {
	for _, r := range s {
		w, _ = w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return w
}

func withReply(text string, state chat.State) chat.Snapshot {
	return chat.Snapshot{
		State: state,
		Messages: []chat.Message{
			{ID: "u1", Role: chat.RoleUser, Text: "hi", Complete: true},
			{ID: "a1", Role: chat.RoleAssistant, Text: text, Complete: state != chat.StateStreaming},
		},
	}
}

func TestWindow_TypingPastCapIsRejected(t *testing.T) {
	w := NewWindow(context.Background(), &fakeConv{}, WindowOptions{InputLimit: 20})
	for i := 0; i < 30; i++ {
		w = typeText(w, "x")
		require.LessOrEqual(t, utf8.RuneCountInString(w.Value()), 20)
	}
	require.Equal(t, strings.Repeat("x", 20), w.Value())

	w = NewWindow(context.Background(), &fakeConv{}, WindowOptions{})
	w, _ = w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.Repeat("ñ", 600)), Paste: true})
	require.Equal(t, DefaultInputLimit, utf8.RuneCountInString(w.Value()))
}

func TestWindow_EnterSubmitsAndClears(t *testing.T) {
	f := &fakeConv{}
	w := NewWindow(context.Background(), f, WindowOptions{})
	w = typeText(w, "hello there")
	w, _ = w.Update(keyEnter)
	require.Equal(t, []string{"hello there"}, f.submitted)
	require.Empty(t, w.Value())

	// blank input never reaches the controller
	w = typeText(w, "   ")
	w, _ = w.Update(keyEnter)
	require.Len(t, f.submitted, 1)
}

func TestWindow_BusySubmitKeepsDraft(t *testing.T) {
	f := &fakeConv{busy: true, snap: withReply("partial", chat.StateStreaming)}
	w := NewWindow(context.Background(), f, WindowOptions{})
	w = typeText(w, "second")
	w, _ = w.Update(keyEnter)
	require.Empty(t, f.submitted)
	require.Equal(t, "second", w.Value())
}

func TestWindow_AltEnterInsertsNewlineAndComposerGrows(t *testing.T) {
	f := &fakeConv{}
	w := NewWindow(context.Background(), f, WindowOptions{})
	require.Equal(t, 1, w.composer.Height())

	w = typeText(w, "a")
	w, _ = w.Update(keyAltEnter)
	w = typeText(w, "b")
	require.Equal(t, "a\nb", w.Value())
	require.Equal(t, 2, w.composer.Height())
	require.Empty(t, f.submitted)

	for i := 0; i < 10; i++ {
		w, _ = w.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	}
	require.Equal(t, 12, strings.Count(w.Value(), "\n")+1)
	require.Equal(t, maxComposerRows, w.composer.Height())
}

func TestWindow_ChipsUnderLatestReply(t *testing.T) {
	f := &fakeConv{snap: withReply("Hello!\n\n[SUGGESTIONS]\n- Rates\n- Services\n- Contact", chat.StateIdle)}
	w := NewWindow(context.Background(), f, WindowOptions{})
	require.Equal(t, []string{"Rates", "Services", "Contact"}, w.Chips())

	view := w.View()
	require.Contains(t, view, "Services")
	require.NotContains(t, view, render.SuggestionMarker)

	w, _ = w.Update(altDigit('2'))
	require.Equal(t, []string{"Services"}, f.submitted)
}

func TestWindow_TerminalControlsNeverReachTheScreen(t *testing.T) {
	f := &fakeConv{snap: chat.Snapshot{State: chat.StateIdle, Messages: []chat.Message{
		{ID: "u1", Role: chat.RoleUser, Text: "hi \x1b]0;pwned\x07there"},
		{ID: "a1", Role: chat.RoleAssistant, Complete: true,
			Text: "Hello \x1b[2J\x1b[H there\x07\n[SUGGESTIONS]\n- clear \x1b]52;c;aGk=\x07 me"},
	}}}
	var copied string
	w := NewWindow(context.Background(), f, WindowOptions{Clipboard: func(s string) error {
		copied = s
		return nil
	}})

	view := w.View()
	for _, bad := range []string{"\x1b[2J", "\x1b[H", "\x1b]52", "\x1b]0", "\x07"} {
		require.NotContains(t, view, bad)
	}
	require.Contains(t, view, "there")
	require.Equal(t, []string{"clear  me"}, w.Chips())

	w, _ = w.Update(altDigit('1'))
	require.Equal(t, []string{"clear  me"}, f.submitted)

	_, _ = w.Update(keyCopy)
	require.Equal(t, "Hello  there", copied)
}

func TestWindow_NoChipsWhileStreaming(t *testing.T) {
	f := &fakeConv{snap: withReply("Hello!\n\n[SUGGESTIONS]\n- Rates", chat.StateStreaming)}
	w := NewWindow(context.Background(), f, WindowOptions{})
	require.Empty(t, w.Chips())
	w, _ = w.Update(altDigit('1'))
	require.Empty(t, f.submitted)

	// a user message last means the reply has not started
	f.snap = chat.Snapshot{State: chat.StateError, Messages: append(withReply("x\n[SUGGESTIONS]\n- y", chat.StateIdle).Messages,
		chat.Message{ID: "u2", Role: chat.RoleUser, Text: "again"})}
	w, _ = w.Update(EventMsg{})
	require.Empty(t, w.Chips())
}

func TestWindow_QuickActionsOnEmptyConversation(t *testing.T) {
	f := &fakeConv{}
	cat := locale.CatalogFor(locale.Spanish)
	w := NewWindow(context.Background(), f, WindowOptions{Catalog: cat})
	view := w.View()
	require.Contains(t, view, cat.Welcome)
	require.Contains(t, view, "Servicios")

	w, _ = w.Update(altDigit('3'))
	require.Equal(t, []string{cat.QuickActions[2].Prompt}, f.quick)
	require.Empty(t, f.submitted)
}

func TestWindow_CopyUsesDisplayedText(t *testing.T) {
	var copied []string
	f := &fakeConv{snap: chat.Snapshot{State: chat.StateIdle, Messages: []chat.Message{
		{ID: "u1", Role: chat.RoleUser, Text: "q1"},
		{ID: "a1", Role: chat.RoleAssistant, Text: "First **answer**\n\n[SUGGESTIONS]\n- more", Complete: true},
		{ID: "u2", Role: chat.RoleUser, Text: "q2"},
		{ID: "a2", Role: chat.RoleAssistant, Text: "Second", Complete: true},
	}}}
	w := NewWindow(context.Background(), f, WindowOptions{Clipboard: func(s string) error {
		copied = append(copied, s)
		return nil
	}})

	w, cmd := w.Update(keyCopy)
	require.NotNil(t, cmd)
	require.Equal(t, []string{"Second"}, copied)
	require.Contains(t, w.View(), "Copied!")

	w, _ = w.Update(keyAltUp)
	w, _ = w.Update(keyCopy)
	require.Equal(t, "First **answer**", copied[1])

	w, _ = w.Update(copiedExpiredMsg{token: 1})
	require.Contains(t, w.View(), "Copied!")
	w, _ = w.Update(copiedExpiredMsg{token: 2})
	require.NotContains(t, w.View(), "Copied!")
}

func TestWindow_CopyFailureShowsNoConfirmation(t *testing.T) {
	f := &fakeConv{snap: withReply("answer", chat.StateIdle)}
	w := NewWindow(context.Background(), f, WindowOptions{Clipboard: func(string) error {
		return errors.New("no clipboard")
	}})
	w, cmd := w.Update(keyCopy)
	require.Nil(t, cmd)
	require.NotContains(t, w.View(), "Copied!")
}

func TestWindow_EscapeAndNewChat(t *testing.T) {
	f := &fakeConv{snap: withReply("answer", chat.StateIdle)}
	w := NewWindow(context.Background(), f, WindowOptions{})

	_, cmd := w.Update(keyEsc)
	require.Equal(t, CloseMsg{}, cmd())

	w, cmd = w.Update(keyNewChat)
	require.NotNil(t, cmd)
	done := cmd()
	require.Equal(t, 1, f.newChats)
	w, _ = w.Update(done)
	require.Contains(t, w.View(), locale.CatalogFor(locale.English).Welcome)
}

func TestWindow_ErrorBanner(t *testing.T) {
	f := &fakeConv{snap: withReply("partial", chat.StateError)}
	w := NewWindow(context.Background(), f, WindowOptions{})
	require.Contains(t, w.View(), locale.CatalogFor(locale.English).ErrorBanner)
	require.Contains(t, w.View(), "partial")
}

func TestWindow_SpinnerWhileSubmitted(t *testing.T) {
	f := &fakeConv{}
	w := NewWindow(context.Background(), f, WindowOptions{})
	f.snap = chat.Snapshot{State: chat.StateSubmitted, Messages: []chat.Message{{ID: "u1", Role: chat.RoleUser, Text: "hi"}}}
	w, cmd := w.Update(EventMsg{})
	require.NotNil(t, cmd)
	require.Contains(t, w.View(), "Thinking")

	f.snap.State = chat.StateIdle
	w, _ = w.Update(EventMsg{})
	require.NotContains(t, w.View(), "Thinking")
}

func resolve(t *testing.T, m Widget) Widget {
	t.Helper()
	model, _ := m.Update(m.Init()())
	return model.(Widget)
}

func press(m Widget, k tea.KeyMsg) (Widget, tea.Cmd) {
	model, cmd := m.Update(k)
	return model.(Widget), cmd
}

func TestWidget_FailsClosedWithoutSession(t *testing.T) {
	f := &fakeConv{sessionErr: errors.Wrap(session.ErrStorageUnavailable, "disk gone")}
	m := resolve(t, NewWidget(context.Background(), f, WidgetOptions{StartOpen: true}))
	require.False(t, m.Ready())
	require.False(t, m.Open())

	m, _ = press(m, keyToggle)
	require.False(t, m.Open())
	require.Contains(t, m.View(), locale.CatalogFor(locale.English).Unavailable)
}

func TestWidget_ToggleMountsAndUnmounts(t *testing.T) {
	f := &fakeConv{}
	m := NewWidget(context.Background(), f, WidgetOptions{})
	require.Empty(t, m.View())

	m = resolve(t, m)
	require.True(t, m.Ready())
	require.False(t, m.Open())
	require.Contains(t, m.View(), "Chat with us")

	m, _ = press(m, keyToggle)
	require.True(t, m.Open())

	_, cmd := press(m, keyEsc)
	model, _ := m.Update(cmd())
	m = model.(Widget)
	require.False(t, m.Open())

	m, _ = press(m, keyToggle)
	require.True(t, m.Open())
	m, _ = press(m, keyToggle)
	require.False(t, m.Open())

	_, cmd = press(m, keyQuit)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestWidget_StartOpen(t *testing.T) {
	m := resolve(t, NewWidget(context.Background(), &fakeConv{}, WidgetOptions{StartOpen: true}))
	require.True(t, m.Open())
}

type fakeSender struct {
	msgs []tea.Msg
}

func (s *fakeSender) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

func TestForwardFunc(t *testing.T) {
	s := &fakeSender{}
	h := ForwardFunc(s)

	ev := chat.Event{Type: chat.EventDelta, RequestID: 4, Delta: "hi", State: chat.StateStreaming}
	msg, err := events.EncodeEvent(ev)
	require.NoError(t, err)
	require.NoError(t, h(msg))
	require.Equal(t, []tea.Msg{EventMsg{Event: ev}}, s.msgs)

	bad, err := events.EncodeEvent(ev)
	require.NoError(t, err)
	bad.Payload = []byte("nope")
	require.NoError(t, h(bad))
	require.Len(t, s.msgs, 1)
}

func TestRenderNodes(t *testing.T) {
	out := RenderNodes(render.Render("Intro with [go](https://x.test)\n- a\n- b\n1. x").Nodes, 60)
	require.Contains(t, out, "Intro with go (https://x.test)")
	require.Contains(t, out, "• a")
	require.Contains(t, out, "• b")
	require.Contains(t, out, "1. x")
}

func TestWindow_WithControllerOverSSE(t *testing.T) {
	srv := httptest.NewServer(devserver.New(devserver.WithDelay(0)).Handler())
	defer srv.Close()
	tr, err := transport.NewSSE(srv.URL + devserver.SSEPath)
	require.NoError(t, err)
	ctrl, err := chat.NewController(session.NewIdentity(session.NewMemoryStore()), tr)
	require.NoError(t, err)
	defer func() { _ = ctrl.Close() }()

	w := NewWindow(context.Background(), ctrl, WindowOptions{})
	w, _ = w.Update(altDigit('2'))
	require.Eventually(t, func() bool {
		s := ctrl.Snapshot()
		return s.State == chat.StateIdle && len(s.Messages) == 2
	}, 5*time.Second, 10*time.Millisecond)

	w, _ = w.Update(EventMsg{})
	require.Len(t, w.Chips(), 3)
	require.Contains(t, w.View(), "$500 per month")
}
