package chat

type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventDelta     EventType = "delta"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventReset     EventType = "reset"
)

// Event describes one controller transition. Events are notifications; the
// authoritative state is always Controller.Snapshot.
//
// Seq is assigned under the controller lock and grows by one per event, so
// consumers that receive events asynchronously can restore their order.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	RequestID RequestID `json:"request_id"`
	SessionID string    `json:"session_id,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Delta     string    `json:"delta,omitempty"`
	Error     string    `json:"error,omitempty"`
	State     State     `json:"state"`
}

// Observer is called after every transition, outside the controller lock.
type Observer func(Event)
