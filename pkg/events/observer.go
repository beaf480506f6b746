package events

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MetadataType      = "event_type"
	MetadataSessionID = "session_id"
)

// NewPublishingObserver returns a chat.Observer that publishes every event to
// topic. Publish failures are logged; they never affect the conversation.
func NewPublishingObserver(pub message.Publisher, topic string) chat.Observer {
	return func(ev chat.Event) {
		msg, err := EncodeEvent(ev)
		if err != nil {
			log.Error().Err(err).Str("component", "events").Msg("encoding event failed")
			return
		}
		if err := pub.Publish(topic, msg); err != nil {
			log.Error().Err(err).Str("component", "events").Str("topic", topic).Msg("publishing event failed")
		}
	}
}

func EncodeEvent(ev chat.Event) (*message.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataType, string(ev.Type))
	msg.Metadata.Set(MetadataSessionID, ev.SessionID)
	return msg, nil
}

func DecodeEvent(msg *message.Message) (chat.Event, error) {
	var ev chat.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return chat.Event{}, errors.Wrap(err, "unmarshal event")
	}
	return ev, nil
}

// AuditHandler logs every conversation event. Delta payloads are logged at
// trace level only. Delivery order is not guaranteed on the in-process bus;
// the seq field gives the controller order.
func AuditHandler(logger zerolog.Logger) message.NoPublishHandlerFunc {
	logger = logger.With().Str("component", "audit").Logger()
	return func(msg *message.Message) error {
		ev, err := DecodeEvent(msg)
		if err != nil {
			logger.Error().Err(err).Str("payload", string(msg.Payload)).Msg("failed to parse event")
			return nil
		}
		if ev.Type == chat.EventDelta {
			logger.Trace().Uint64("seq", ev.Seq).Uint64("request_id", uint64(ev.RequestID)).Str("delta", ev.Delta).Msg("delta")
			return nil
		}
		var e *zerolog.Event
		if ev.Type == chat.EventFailed {
			e = logger.Warn().Str("error", ev.Error)
		} else {
			e = logger.Info()
		}
		e.Uint64("seq", ev.Seq).
			Str("event", string(ev.Type)).
			Uint64("request_id", uint64(ev.RequestID)).
			Str("session_id", ev.SessionID).
			Str("state", string(ev.State)).
			Msg("conversation event")
		return nil
	}
}
