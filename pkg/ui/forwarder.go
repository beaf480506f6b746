package ui

import (
	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/concierge/pkg/events"
	"github.com/rs/zerolog/log"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// ForwardFunc turns conversation events from the bus into EventMsgs for the
// program p.
func ForwardFunc(p Sender) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ev, err := events.DecodeEvent(msg)
		if err != nil {
			// redelivering a payload we cannot parse would not help
			log.Error().Err(err).Str("payload", string(msg.Payload)).Msg("failed to parse event")
			return nil
		}
		log.Trace().Str("event", string(ev.Type)).Msg("dispatching event to UI")
		p.Send(EventMsg{Event: ev})
		return nil
	}
}
