// Package chat holds the conversation state machine.
//
// A Controller owns the message list and drives it through
// idle → submitted → streaming → idle (or error). At most one request is open
// at a time; every request is tagged with a RequestID, and transport
// callbacks carrying anything but the current id are dropped.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("conversation controller closed")

type inflight struct {
	id        RequestID
	assistant int
	cancel    context.CancelFunc
}

type Controller struct {
	identity  SessionProvider
	transport Transport
	language  string
	pageURL   string
	newID     func() string
	now       func() time.Time
	observers []Observer

	mu         sync.Mutex
	state      State
	messages   []Message
	err        error
	sessionID  string
	generation RequestID
	seq        uint64
	open       *inflight
	closed     bool
}

type Option func(*Controller)

func WithLanguage(lang string) Option {
	return func(c *Controller) { c.language = lang }
}

func WithPageURL(u string) Option {
	return func(c *Controller) { c.pageURL = u }
}

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

func WithIDGenerator(f func() string) Option {
	return func(c *Controller) {
		if f != nil {
			c.newID = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func NewController(identity SessionProvider, transport Transport, opts ...Option) (*Controller, error) {
	if identity == nil {
		return nil, errors.New("conversation controller: session provider is nil")
	}
	if transport == nil {
		return nil, errors.New("conversation controller: transport is nil")
	}
	c := &Controller{
		identity:  identity,
		transport: transport,
		language:  "en",
		newID:     uuid.NewString,
		now:       time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EnsureSession resolves the session token, creating one if needed.
func (c *Controller) EnsureSession(ctx context.Context) (string, error) {
	if c == nil {
		return "", ErrClosed
	}
	tok, err := c.identity.GetOrCreate(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.sessionID = tok
	c.mu.Unlock()
	return tok, nil
}

// Submit appends a user message and opens a streaming request. It returns
// false without side effects when text is blank or a request is already open.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	if c == nil {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if !c.acceptsLocked() {
		state := c.state
		c.mu.Unlock()
		log.Debug().Str("component", "chat").Str("state", string(state)).Msg("submit ignored, request already open")
		return false
	}
	gen := c.generation
	c.mu.Unlock()

	// the store may be remote; Snapshot must not wait on it
	tok, err := c.identity.GetOrCreate(ctx)

	c.mu.Lock()
	if !c.acceptsLocked() || c.generation != gen {
		c.mu.Unlock()
		log.Debug().Str("component", "chat").Msg("submit ignored, conversation changed while resolving session")
		return false
	}
	if err != nil {
		c.state = StateError
		c.err = err
		ev := c.eventLocked(EventFailed, c.generation)
		ev.Error = err.Error()
		c.mu.Unlock()
		log.Error().Err(err).Str("component", "chat").Msg("session unavailable on submit")
		c.notify(ev)
		return false
	}
	c.sessionID = tok

	userMsg := Message{
		ID:        c.newID(),
		Role:      RoleUser,
		Text:      text,
		CreatedAt: c.now(),
		Complete:  true,
	}
	c.messages = append(c.messages, userMsg)
	c.generation++
	id := c.generation
	c.state = StateSubmitted
	c.err = nil

	reqCtx, cancel := context.WithCancel(ctx)
	c.open = &inflight{id: id, assistant: -1, cancel: cancel}
	req := c.requestLocked()
	ev := c.eventLocked(EventSubmitted, id)
	ev.MessageID = userMsg.ID
	c.mu.Unlock()

	log.Info().Str("component", "chat").Uint64("request_id", uint64(id)).Int("messages", len(req.Messages)).Msg("submitting message")
	c.notify(ev)
	go c.pump(reqCtx, id, req)
	return true
}

// QuickAction submits a predefined prompt as if the user typed it.
func (c *Controller) QuickAction(ctx context.Context, prompt string) bool {
	return c.Submit(ctx, prompt)
}

func (c *Controller) pump(ctx context.Context, id RequestID, req Request) {
	err := c.transport.Stream(ctx, req, func(delta string) {
		c.HandleDelta(id, delta)
	})
	if err != nil {
		c.HandleError(id, err)
		return
	}
	c.HandleComplete(id)
}

// HandleDelta appends delta to the open assistant message, creating it on
// the first delta. Stale or unknown ids are ignored and reported as false.
func (c *Controller) HandleDelta(id RequestID, delta string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	if !c.isCurrentLocked(id) {
		c.mu.Unlock()
		log.Debug().Str("component", "chat").Uint64("request_id", uint64(id)).Msg("dropping stale delta")
		return false
	}
	if delta == "" {
		c.mu.Unlock()
		return true
	}
	if c.open.assistant < 0 {
		c.messages = append(c.messages, Message{
			ID:        c.newID(),
			Role:      RoleAssistant,
			CreatedAt: c.now(),
		})
		c.open.assistant = len(c.messages) - 1
	}
	msg := &c.messages[c.open.assistant]
	msg.Text += delta
	c.state = StateStreaming
	ev := c.eventLocked(EventDelta, id)
	ev.MessageID = msg.ID
	ev.Delta = delta
	c.mu.Unlock()

	c.notify(ev)
	return true
}

// HandleComplete finalizes the open request. A reply that produced no text
// leaves no assistant message behind.
func (c *Controller) HandleComplete(id RequestID) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	if !c.isCurrentLocked(id) {
		c.mu.Unlock()
		return false
	}
	ev := c.eventLocked(EventCompleted, id)
	if c.open.assistant >= 0 {
		c.messages[c.open.assistant].Complete = true
		ev.MessageID = c.messages[c.open.assistant].ID
	}
	c.finishLocked()
	c.state = StateIdle
	ev.State = c.state
	c.mu.Unlock()

	log.Info().Str("component", "chat").Uint64("request_id", uint64(id)).Msg("reply complete")
	c.notify(ev)
	return true
}

// HandleError moves the controller to the error state. Any partial reply is
// kept and frozen.
func (c *Controller) HandleError(id RequestID, err error) bool {
	if c == nil {
		return false
	}
	if err == nil {
		err = errors.New("unknown transport error")
	}
	c.mu.Lock()
	if !c.isCurrentLocked(id) {
		c.mu.Unlock()
		return false
	}
	ev := c.eventLocked(EventFailed, id)
	if c.open.assistant >= 0 {
		c.messages[c.open.assistant].Complete = true
		ev.MessageID = c.messages[c.open.assistant].ID
	}
	c.finishLocked()
	c.state = StateError
	c.err = err
	ev.State = c.state
	ev.Error = err.Error()
	c.mu.Unlock()

	log.Warn().Err(err).Str("component", "chat").Uint64("request_id", uint64(id)).Msg("reply failed")
	c.notify(ev)
	return true
}

// NewChat abandons the open request, clears the conversation and rotates the
// session token. If the rotation fails the conversation stays cleared and the
// controller moves to the error state.
func (c *Controller) NewChat(ctx context.Context) error {
	if c == nil {
		return ErrClosed
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.finishLocked()
	c.generation++
	gen := c.generation
	c.messages = nil
	c.state = StateIdle
	c.err = nil
	c.mu.Unlock()

	tok, err := c.identity.Reset(ctx)

	c.mu.Lock()
	if c.generation == gen {
		if err != nil {
			c.state = StateError
			c.err = err
		} else {
			c.sessionID = tok
		}
	}
	ev := c.eventLocked(EventReset, gen)
	if err != nil {
		ev.Error = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("component", "chat").Msg("session reset failed")
	} else {
		log.Info().Str("component", "chat").Msg("started new conversation")
	}
	c.notify(ev)
	return err
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{State: StateIdle}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return Snapshot{
		SessionID: c.sessionID,
		State:     c.state,
		Messages:  msgs,
		Err:       c.err,
		RequestID: c.generation,
	}
}

// Close cancels the open request. Later callbacks are dropped and Submit
// returns false.
func (c *Controller) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.finishLocked()
	c.generation++
	c.closed = true
	return nil
}

// acceptsLocked reports whether a new request may be opened.
func (c *Controller) acceptsLocked() bool {
	return !c.closed && (c.state == StateIdle || c.state == StateError)
}

func (c *Controller) isCurrentLocked(id RequestID) bool {
	return !c.closed && c.open != nil && c.open.id == id && c.generation == id
}

func (c *Controller) finishLocked() {
	if c.open == nil {
		return
	}
	if c.open.cancel != nil {
		c.open.cancel()
	}
	c.open = nil
}

func (c *Controller) requestLocked() Request {
	msgs := make([]WireMessage, 0, len(c.messages))
	for _, m := range c.messages {
		msgs = append(msgs, WireMessage{ID: m.ID, Role: m.Role, Content: m.Text})
	}
	return Request{
		SessionID: c.sessionID,
		Language:  c.language,
		PageURL:   c.pageURL,
		Messages:  msgs,
	}
}

func (c *Controller) eventLocked(t EventType, id RequestID) Event {
	c.seq++
	return Event{
		Seq:       c.seq,
		Type:      t,
		RequestID: id,
		SessionID: c.sessionID,
		State:     c.state,
	}
}

func (c *Controller) notify(ev Event) {
	for _, o := range c.observers {
		o(ev)
	}
}
