package assistant

import (
	"strings"

	"go.ghostpane.dev/ghostpane/internal/types"
)

// Status is the tri-state of one capture channel.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusCapturing  Status = "capturing"
	StatusProcessing Status = "processing"
)

// ScreenshotMarker is appended to the question text when an image is
// attached, so the user can see it without rendering the image inline.
const ScreenshotMarker = "[Screenshot attached]"

// Session holds the state of a single question/answer cycle. It lives in
// process memory only and is owned by exactly one orchestrator; nothing
// here is persisted.
type Session struct {
	Question   string
	Screenshot []byte
	Language   types.ProgrammingLanguage
	Response   *types.AIResponse
}

// NewSession creates an empty session answering in lang.
func NewSession(lang types.ProgrammingLanguage) *Session {
	return &Session{Language: lang}
}

// CanSubmit reports whether there is anything worth submitting: either
// question text or a screenshot. A submit with neither is a no-op.
func (s *Session) CanSubmit() bool {
	return strings.TrimSpace(s.Question) != "" || len(s.Screenshot) > 0
}

// AppendTranscript folds transcribed speech into the question, separated
// from existing text by a newline.
func (s *Session) AppendTranscript(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if s.Question == "" {
		s.Question = text
		return
	}
	s.Question += "\n" + text
}

// AttachScreenshot stores the image and marks the question text so the
// attachment is visible to the user.
func (s *Session) AttachScreenshot(img []byte) {
	s.Screenshot = img
	if !strings.Contains(s.Question, ScreenshotMarker) {
		s.AppendTranscript(ScreenshotMarker)
	}
}

// OutboundQuestion returns the question text as sent to the endpoint:
// the screenshot marker is UI-only and is stripped, so an image-only
// session submits an empty question alongside the screenshot.
func (s *Session) OutboundQuestion() string {
	q := strings.ReplaceAll(s.Question, ScreenshotMarker, "")
	return strings.TrimSpace(q)
}

// Clear resets the session to empty, keeping the selected language.
func (s *Session) Clear() {
	s.Question = ""
	s.Screenshot = nil
	s.Response = nil
}
