package ui

import "github.com/go-go-golems/concierge/pkg/chat"

// EventMsg carries a controller event into the bubbletea loop.
type EventMsg struct {
	Event chat.Event
}

// CloseMsg asks the widget to unmount the window.
type CloseMsg struct{}

type copiedExpiredMsg struct {
	token int
}

type newChatDoneMsg struct {
	err error
}

type sessionResolvedMsg struct {
	token string
	err   error
}
