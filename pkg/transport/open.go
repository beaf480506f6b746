package transport

import (
	"strings"

	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/pkg/errors"
)

const (
	KindSSE       = "sse"
	KindWebSocket = "websocket"
)

type Settings struct {
	Kind     string `yaml:"kind"`
	Endpoint string `yaml:"endpoint"`
}

// Open builds the configured transport. An empty kind means SSE.
func Open(s Settings) (chat.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", KindSSE:
		return NewSSE(s.Endpoint)
	case KindWebSocket, "ws":
		return NewWebSocket(s.Endpoint, nil)
	default:
		return nil, errors.Errorf("unknown transport kind %q", s.Kind)
	}
}
