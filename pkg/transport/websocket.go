package transport

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// WebSocket dials a fresh connection per request, sends the request as the
// first text message and reads frames until done.
type WebSocket struct {
	url    string
	dialer *websocket.Dialer
	header http.Header
}

var _ chat.Transport = &WebSocket{}

func NewWebSocket(url string, header http.Header) (*WebSocket, error) {
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		return nil, errors.Errorf("websocket transport: url %q must use ws:// or wss://", url)
	}
	return &WebSocket{url: url, dialer: websocket.DefaultDialer, header: header}, nil
}

func (w *WebSocket) Stream(ctx context.Context, req chat.Request, onDelta func(string)) error {
	conn, resp, err := w.dialer.DialContext(ctx, w.url, w.header)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if resp != nil {
			return errors.Wrapf(ErrTransportFailure, "dial %s: status %d: %v", w.url, resp.StatusCode, err)
		}
		return errors.Wrapf(ErrTransportFailure, "dial %s: %v", w.url, err)
	}

	// ReadMessage does not observe ctx; closing the conn unblocks it.
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { _ = conn.Close() }) }
	defer closeConn()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(req); err != nil {
		return errors.Wrapf(ErrTransportFailure, "write request: %v", err)
	}
	log.Debug().Str("component", "transport").Str("url", w.url).Msg("websocket stream opened")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(ErrTransportFailure, "read frame: %v", err)
		}
		f, err := DecodeFrame(data)
		if err != nil {
			return err
		}
		done, err := apply(f, onDelta)
		if done || err != nil {
			if err == nil {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			return err
		}
	}
}
