package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxSSELine = 1 << 20

// SSE posts the request and reads frames from a text/event-stream response.
type SSE struct {
	endpoint string
	client   *http.Client
	headers  http.Header
}

var _ chat.Transport = &SSE{}

type SSEOption func(*SSE)

func WithHTTPClient(c *http.Client) SSEOption {
	return func(s *SSE) {
		if c != nil {
			s.client = c
		}
	}
}

func WithHeader(key, value string) SSEOption {
	return func(s *SSE) { s.headers.Add(key, value) }
}

func NewSSE(endpoint string, opts ...SSEOption) (*SSE, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("sse transport: empty endpoint")
	}
	s := &SSE{
		endpoint: endpoint,
		// no overall timeout; replies stream for as long as the server writes
		client:  &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second}},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SSE) Stream(ctx context.Context, req chat.Request, onDelta func(string)) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "sse transport: encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "sse transport: build request")
	}
	for k, vs := range s.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrTransportFailure, "post %s: %v", s.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Wrapf(ErrTransportFailure, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	log.Debug().Str("component", "transport").Str("endpoint", s.endpoint).Msg("sse stream opened")
	return readEventStream(ctx, resp.Body, onDelta)
}

// readEventStream dispatches one frame per SSE event. Multiple data lines of
// one event are joined with newlines; events other than "message" are skipped.
func readEventStream(ctx context.Context, r io.Reader, onDelta func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	var data []string
	event := ""
	dispatch := func() (bool, error) {
		defer func() {
			data = data[:0]
			event = ""
		}()
		if len(data) == 0 || (event != "" && event != "message") {
			return false, nil
		}
		f, err := DecodeFrame([]byte(strings.Join(data, "\n")))
		if err != nil {
			return true, err
		}
		return apply(f, onDelta)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			done, err := dispatch()
			if done || err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrapf(ErrTransportFailure, "read stream: %v", err)
	}
	// a trailing event without its blank line still counts
	if _, err := dispatch(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
