// Package app provides the core application service bound to the overlay UI.
package app

import (
	"go.ghostpane.dev/ghostpane/assistant"
	"go.ghostpane.dev/ghostpane/capture"
)

// Event names for frontend communication. This fixed set is the entire
// surface crossing the window bridge; nothing dynamic goes through.
const (
	EventAction     = "action"
	EventState      = "state-changed"
	EventStatus     = "capture-status"
	EventScreenshot = "screenshot"
	EventQuestion   = "question-changed"
	EventResponse   = "response"
	EventAskError   = "ask-error"
	EventDegraded   = "protection-degraded"
	EventTokens     = "tokens-remaining"
)

// StatusEvent reports one capture channel's status transition.
type StatusEvent struct {
	Channel string           `json:"channel"`
	Status  assistant.Status `json:"status"`
}

// ErrorEvent is a user-facing failure. Kind lets the UI pick distinct
// messaging (rate limiting vs. a generic failure, etc.).
type ErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusEvent(ch capture.Channel, st assistant.Status) StatusEvent {
	return StatusEvent{Channel: ch.String(), Status: st}
}
