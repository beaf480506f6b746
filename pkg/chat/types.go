package chat

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation. User messages are complete on
// creation; assistant messages grow by deltas until Complete is set.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Complete  bool      `json:"complete"`
}

type State string

const (
	StateIdle      State = "idle"
	StateSubmitted State = "submitted"
	StateStreaming State = "streaming"
	StateError     State = "error"
)

// RequestID tags one submission. It is the controller generation at the time
// the request was opened; anything tagged with an older generation is stale.
type RequestID uint64

// WireMessage is a message as sent to the streaming endpoint.
type WireMessage struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body of one streaming request.
type Request struct {
	SessionID string        `json:"sessionId"`
	Language  string        `json:"language"`
	PageURL   string        `json:"pageUrl"`
	Messages  []WireMessage `json:"messages"`
}

// Transport opens one streaming request and calls onDelta for every chunk of
// assistant text, in arrival order, from a single goroutine. Stream returns nil
// once the reply is complete and an error on any failure.
type Transport interface {
	Stream(ctx context.Context, req Request, onDelta func(delta string)) error
}

// SessionProvider is the part of session.Identity the controller needs.
type SessionProvider interface {
	GetOrCreate(ctx context.Context) (string, error)
	Reset(ctx context.Context) (string, error)
}

// Snapshot is an immutable copy of the controller state for views.
type Snapshot struct {
	SessionID string
	State     State
	Messages  []Message
	Err       error
	RequestID RequestID
}

// LatestAssistant returns the index of the last assistant message, or -1.
func (s Snapshot) LatestAssistant() int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return i
		}
	}
	return -1
}

// Busy reports whether a request is open.
func (s Snapshot) Busy() bool {
	return s.State == StateSubmitted || s.State == StateStreaming
}
