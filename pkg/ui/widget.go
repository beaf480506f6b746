package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// SessionConversation is a Conversation that can resolve its session token.
type SessionConversation interface {
	Conversation
	EnsureSession(ctx context.Context) (string, error)
}

type WidgetOptions struct {
	Window WindowOptions
	// StartOpen mounts the window as soon as the session resolves.
	StartOpen bool
}

// Widget is the top-level model: a toggle that mounts the Window once a
// session token exists. Without a token nothing interactive is ever shown.
type Widget struct {
	ctx  context.Context
	conv SessionConversation
	opts WidgetOptions
	keys KeyMap

	ready   bool
	err     error
	session string
	window  *Window

	width  int
	height int
}

var _ tea.Model = Widget{}

func NewWidget(ctx context.Context, conv SessionConversation, opts WidgetOptions) Widget {
	// one cache shared by every mounted window
	opts.Window = opts.Window.withDefaults()
	return Widget{
		ctx:    ctx,
		conv:   conv,
		opts:   opts,
		keys:   DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

func (m Widget) Init() tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		tok, err := conv.EnsureSession(ctx)
		return sessionResolvedMsg{token: tok, err: err}
	}
}

func (m Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Toggle) {
			if m.window != nil {
				return m.close(), nil
			}
			return m.open()
		}

	case sessionResolvedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Str("component", "ui").Msg("session unavailable, chat stays closed")
			m.err = msg.err
			return m, nil
		}
		m.ready = true
		m.session = msg.token
		log.Info().Str("component", "ui").Str("session_id", msg.token).Msg("session resolved")
		if m.opts.StartOpen {
			return m.open()
		}
		return m, nil

	case CloseMsg:
		return m.close(), nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}

	if m.window == nil {
		return m, nil
	}
	w, cmd := m.window.Update(msg)
	m.window = &w
	return m, cmd
}

// open mounts a fresh window; the conversation itself lives in the
// controller so nothing is lost across toggles.
func (m Widget) open() (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	w := NewWindow(m.ctx, m.conv, m.opts.Window)
	w, _ = w.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	m.window = &w
	return m, w.Init()
}

func (m Widget) close() Widget {
	m.window = nil
	return m
}

// Open reports whether the window is mounted.
func (m Widget) Open() bool { return m.window != nil }

// Ready reports whether a session token was resolved.
func (m Widget) Ready() bool { return m.ready }

func (m Widget) View() string {
	cat := m.opts.Window.Catalog
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, unavailableText.Render(cat.Unavailable))
	}
	if !m.ready {
		return ""
	}
	if m.window != nil {
		return m.window.View()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom,
		toggleStyle.Render("💬 "+cat.ToggleClosed)+" "+helpStyle.Render("ctrl+o"))
}
