// Package devserver is a stand-in for the streaming chat endpoint. It streams
// canned bilingual replies word by word over SSE and websockets.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/go-go-golems/concierge/pkg/transport"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SSEPath = "/api/chat"
	WSPath  = "/api/chat/ws"
)

type Server struct {
	delay    time.Duration
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

type Option func(*Server)

// WithDelay sets the pause between streamed words.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(opts ...Option) *Server {
	s := &Server{
		delay:    40 * time.Millisecond,
		logger:   log.Logger.With().Str("component", "devserver").Logger(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("POST "+SSEPath, s.handleSSE)
	s.mux.HandleFunc("GET "+WSPath, s.handleWS)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn().Err(err).Msg("bad chat request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "no messages", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	s.logger.Info().Str("session_id", req.SessionID).Str("language", req.Language).Msg("streaming sse reply")
	err := s.stream(r.Context(), req, func(f transport.Frame) error {
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("sse reply aborted")
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", transport.DoneSentinel)
	flusher.Flush()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	var req chat.Request
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(transport.ErrorFrame("invalid request"))
		return
	}
	s.logger.Info().Str("session_id", req.SessionID).Str("language", req.Language).Msg("streaming websocket reply")
	err = s.stream(r.Context(), req, func(f transport.Frame) error {
		return conn.WriteJSON(f)
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket reply aborted")
		return
	}
	_ = conn.WriteJSON(transport.DoneFrame())
	// wait for the client's close so it reads done before the conn drops
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, _ = conn.ReadMessage()
}

// stream writes the reply as delta frames. On a failing reply it writes one
// delta and an error frame, and returns errFailed.
func (s *Server) stream(ctx context.Context, req chat.Request, write func(transport.Frame) error) error {
	text, fail := Reply(req)
	for i, chunk := range Chunks(text) {
		if err := write(transport.DeltaFrame(chunk)); err != nil {
			return err
		}
		if fail && i == 0 {
			if err := write(transport.ErrorFrame("upstream model unavailable")); err != nil {
				return err
			}
			return errFailed
		}
		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return nil
}

var errFailed = errors.New("reply failed on request")
