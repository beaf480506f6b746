// Package transport implements chat.Transport over SSE and websockets.
package transport

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrTransportFailure marks any failure of a streaming request: connection
// errors, non-2xx status, undecodable frames and server-sent error frames.
var ErrTransportFailure = errors.New("chat transport failure")

type FrameType string

const (
	FrameDelta FrameType = "delta"
	FrameDone  FrameType = "done"
	FrameError FrameType = "error"
)

// DoneSentinel is the bare SSE data payload that also ends a stream.
const DoneSentinel = "[DONE]"

// Frame is one message of the streaming protocol.
type Frame struct {
	Type  FrameType `json:"type"`
	Delta string    `json:"delta,omitempty"`
	Error string    `json:"error,omitempty"`
}

func DeltaFrame(delta string) Frame { return Frame{Type: FrameDelta, Delta: delta} }
func DoneFrame() Frame              { return Frame{Type: FrameDone} }
func ErrorFrame(msg string) Frame   { return Frame{Type: FrameError, Error: msg} }

// DecodeFrame parses one frame payload.
func DecodeFrame(data []byte) (Frame, error) {
	if strings.TrimSpace(string(data)) == DoneSentinel {
		return DoneFrame(), nil
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.Wrapf(ErrTransportFailure, "decode frame: %v", err)
	}
	switch f.Type {
	case FrameDelta, FrameDone, FrameError:
		return f, nil
	default:
		return Frame{}, errors.Wrapf(ErrTransportFailure, "unknown frame type %q", f.Type)
	}
}

// apply feeds a decoded frame to onDelta. It reports whether the stream ended.
func apply(f Frame, onDelta func(string)) (bool, error) {
	switch f.Type {
	case FrameDelta:
		if onDelta != nil {
			onDelta(f.Delta)
		}
		return false, nil
	case FrameDone:
		return true, nil
	case FrameError:
		msg := f.Error
		if msg == "" {
			msg = "server reported an error"
		}
		return true, errors.Wrap(ErrTransportFailure, msg)
	}
	return false, nil
}
