package app

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.ghostpane.dev/ghostpane/assistant"
	"go.ghostpane.dev/ghostpane/backend"
	"go.ghostpane.dev/ghostpane/capture"
	"go.ghostpane.dev/ghostpane/config"
	"go.ghostpane.dev/ghostpane/internal/types"
)

// Backend performs assistant and transcription calls.
type Backend interface {
	Ask(ctx context.Context, req backend.AskRequest) (*backend.AskResult, error)
	Transcribe(ctx context.Context, clip []byte) (string, error)
}

// Capturer grabs screen frames and enumerates sources.
type Capturer interface {
	CaptureScreen() ([]byte, error)
	CaptureRegion() ([]byte, error)
	ListSources() ([]types.Source, error)
}

// Recorder captures one finite audio clip.
type Recorder interface {
	Start() error
	Stop() ([]byte, error)
	Running() bool
}

// Overlay is the controller bridge: the only path through which this
// service may touch window state.
type Overlay interface {
	ToggleVisibility()
	SetOpacity(float64) error
	SetAlwaysOnTop(bool)
	Degraded() bool
}

// osCapturer backs Capturer with the real capture package.
type osCapturer struct{}

func (osCapturer) CaptureScreen() ([]byte, error)       { return capture.CaptureScreen() }
func (osCapturer) CaptureRegion() ([]byte, error)       { return capture.CaptureRegion() }
func (osCapturer) ListSources() ([]types.Source, error) { return capture.ListSources() }

// requestTimeout bounds every outbound call so a stalled network request
// cannot hang the overlay mid-interview.
const requestTimeout = 30 * time.Second

// Service is the orchestrator for a single question/answer cycle. It is
// bound to the overlay frontend and driven by the shortcut router. One
// instance exists per process; it exclusively owns the session.
type Service struct {
	mu        sync.Mutex
	cfg       *config.Config
	overlay   Overlay
	backend   Backend
	capturer  Capturer
	recorders map[capture.Channel]Recorder
	statuses  map[capture.Channel]assistant.Status

	session    *assistant.Session
	submitting bool
	tokens     int
	// gen fences in-flight work: Clear bumps it, and late completions
	// from a previous generation are dropped.
	gen int

	emit    func(name string, data any)
	actions chan types.Action
	done    chan struct{}
	once    sync.Once
}

// New creates the service. Pass nil capturer to use the OS capture
// adapter.
func New(cfg *config.Config, ovl Overlay, be Backend, capturer Capturer, mic, pcAudio Recorder) *Service {
	if capturer == nil {
		capturer = osCapturer{}
	}
	return &Service{
		cfg:      cfg,
		overlay:  ovl,
		backend:  be,
		capturer: capturer,
		recorders: map[capture.Channel]Recorder{
			capture.ChannelMicrophone:  mic,
			capture.ChannelSystemAudio: pcAudio,
		},
		statuses: map[capture.Channel]assistant.Status{
			capture.ChannelMicrophone:  assistant.StatusIdle,
			capture.ChannelSystemAudio: assistant.StatusIdle,
		},
		session: assistant.NewSession(cfg.Language),
		emit:    func(string, any) {},
		actions: make(chan types.Action, 64),
		done:    make(chan struct{}),
	}
}

// SetEmitter wires the event sink (the Wails event bus in production).
func (s *Service) SetEmitter(emit func(name string, data any)) {
	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
}

// Start begins consuming dispatched actions in press order.
func (s *Service) Start() {
	go s.run()
}

// Shutdown stops the dispatch loop and any live recorders. Idempotent.
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.done) })
	for ch, rec := range s.recorders {
		if rec.Running() {
			if _, err := rec.Stop(); err != nil {
				slog.Warn("stop recorder on shutdown", "channel", ch.String(), "error", err)
			}
		}
	}
}

// Dispatch queues one shortcut-fired action. Called from the shortcut
// router; never blocks it.
func (s *Service) Dispatch(a types.Action) {
	select {
	case s.actions <- a:
	default:
		slog.Warn("action queue full, dropping", "action", a)
	}
}

// run executes actions one at a time, in the order pressed. Long
// operations (submit, transcription) move to their own goroutine, gated
// by status flags, so toggle-visibility stays responsive while a request
// is in flight.
func (s *Service) run() {
	for {
		select {
		case a := <-s.actions:
			s.emitEvent(EventAction, string(a))
			s.handle(a)
		case <-s.done:
			return
		}
	}
}

func (s *Service) handle(a types.Action) {
	switch a {
	case types.ActionToggleVisibility:
		s.overlay.ToggleVisibility()
	case types.ActionToggleMic:
		s.ToggleMicrophone()
	case types.ActionTogglePCAudio:
		s.TogglePCAudio()
	case types.ActionScreenshot:
		// The frame grab can stall on permission prompts or slow
		// displays; it must not hold up queued toggles.
		go func() {
			if err := s.CaptureScreenshot(); err != nil {
				slog.Error("capture screenshot", "error", err)
			}
		}()
	case types.ActionClear:
		s.Clear()
	case types.ActionSubmit:
		s.Submit()
	default:
		slog.Warn("unknown action", "action", a)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Bridge operations (bound to the overlay frontend)
// ─────────────────────────────────────────────────────────────────────────────

// GetState returns the full view state.
func (s *Service) GetState() types.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.UIState{
		Question:           s.session.Question,
		Language:           s.session.Language,
		MicStatus:          string(s.statuses[capture.ChannelMicrophone]),
		PCAudioStatus:      string(s.statuses[capture.ChannelSystemAudio]),
		ScreenshotAttached: len(s.session.Screenshot) > 0,
		Submitting:         s.submitting,
		Degraded:           s.overlay.Degraded(),
		TokensRemaining:    s.tokens,
		Response:           s.session.Response,
	}
}

// SetQuestion syncs typed input from the frontend.
func (s *Service) SetQuestion(text string) {
	s.mu.Lock()
	s.session.Question = text
	s.mu.Unlock()
}

// SetLanguage switches the answer language and persists it as the
// default.
func (s *Service) SetLanguage(lang string) error {
	l := types.ProgrammingLanguage(lang)
	if !l.Valid() {
		return errors.New("unknown language: " + lang)
	}

	s.mu.Lock()
	s.session.Language = l
	s.cfg.Language = l
	s.mu.Unlock()

	if err := s.cfg.Save(); err != nil {
		slog.Warn("persist language", "error", err)
	}
	return nil
}

// ListSources enumerates capturable sources for the system-audio setup.
func (s *Service) ListSources() ([]types.Source, error) {
	return s.capturer.ListSources()
}

// SetOpacity forwards an opacity change to the window controller.
func (s *Service) SetOpacity(v float64) error {
	return s.overlay.SetOpacity(v)
}

// SetAlwaysOnTop forwards the always-on-top flag to the controller.
func (s *Service) SetAlwaysOnTop(on bool) {
	s.overlay.SetAlwaysOnTop(on)
}

// LastCode returns the code section of the displayed answer, if any.
func (s *Service) LastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Response == nil {
		return ""
	}
	return s.session.Response.Code
}

// CaptureScreenshot grabs the screen and attaches it to the session.
// The overlay window never appears in the frame: capture exclusion keeps
// it out at the compositor level, so there is no hide/show dance here.
func (s *Service) CaptureScreenshot() error {
	img, err := s.capturer.CaptureScreen()
	if err != nil {
		s.emitError(err)
		return err
	}
	s.attachScreenshot(img)
	return nil
}

// CaptureRegionScreenshot lets the user drag out a region and attaches
// it. A cancelled selection is not an error.
func (s *Service) CaptureRegionScreenshot() error {
	img, err := s.capturer.CaptureRegion()
	if err != nil {
		if errors.Is(err, capture.ErrCaptureCancelled) {
			return nil
		}
		s.emitError(err)
		return err
	}
	s.attachScreenshot(img)
	return nil
}

func (s *Service) attachScreenshot(img []byte) {
	s.mu.Lock()
	s.session.AttachScreenshot(img)
	question := s.session.Question
	s.mu.Unlock()

	s.emitEvent(EventScreenshot, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(img))
	s.emitEvent(EventQuestion, question)
	slog.Info("screenshot attached", "bytes", len(img))
}

// Submit sends the composed question. No-op when there is nothing to
// send or a submit is already in flight. On failure the session is
// preserved so resubmission is cheap.
func (s *Service) Submit() {
	s.mu.Lock()
	if s.submitting || !s.session.CanSubmit() {
		s.mu.Unlock()
		return
	}
	s.submitting = true
	gen := s.gen
	req := backend.AskRequest{
		Question: s.session.OutboundQuestion(),
		Language: s.session.Language,
	}
	if len(s.session.Screenshot) > 0 {
		req.Screenshot = "data:image/png;base64," + base64.StdEncoding.EncodeToString(s.session.Screenshot)
	}
	s.mu.Unlock()

	s.emitEvent(EventState, s.GetState())
	go s.submit(gen, req)
}

func (s *Service) submit(gen int, req backend.AskRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := s.backend.Ask(ctx, req)

	s.mu.Lock()
	s.submitting = false
	if gen != s.gen {
		// Cleared while in flight; the answer is stale.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		slog.Error("ask failed", "error", err)
		s.emitError(err)
		s.emitEvent(EventState, s.GetState())
		return
	}

	resp := res.Response
	s.session.Response = &resp
	s.tokens = res.TokensRemaining
	s.mu.Unlock()

	s.emitEvent(EventResponse, resp)
	s.emitEvent(EventTokens, res.TokensRemaining)
	s.emitEvent(EventState, s.GetState())
	slog.Info("answer received", "tokens_remaining", res.TokensRemaining)
}

// Clear resets the session and discards any in-flight response.
func (s *Service) Clear() {
	s.mu.Lock()
	s.gen++
	s.session.Clear()
	s.mu.Unlock()

	s.emitEvent(EventQuestion, "")
	s.emitEvent(EventState, s.GetState())
}

// ToggleMicrophone starts or stops the microphone capture channel.
func (s *Service) ToggleMicrophone() {
	s.toggleChannel(capture.ChannelMicrophone)
}

// TogglePCAudio starts or stops the system-audio capture channel.
func (s *Service) TogglePCAudio() {
	s.toggleChannel(capture.ChannelSystemAudio)
}

// toggleChannel drives the Idle → Capturing → Processing → Idle cycle.
// A toggle while Processing is a no-op: the stop/transcribe transition
// must not double-fire. The two channels never share buffers or status.
func (s *Service) toggleChannel(ch capture.Channel) {
	s.mu.Lock()
	switch s.statuses[ch] {
	case assistant.StatusProcessing:
		s.mu.Unlock()
		return

	case assistant.StatusIdle:
		rec := s.recorders[ch]
		if err := rec.Start(); err != nil {
			s.mu.Unlock()
			slog.Error("start capture", "channel", ch.String(), "error", err)
			s.emitError(err)
			return
		}
		s.statuses[ch] = assistant.StatusCapturing
		s.mu.Unlock()
		s.emitEvent(EventStatus, statusEvent(ch, assistant.StatusCapturing))

	case assistant.StatusCapturing:
		s.statuses[ch] = assistant.StatusProcessing
		s.mu.Unlock()
		s.emitEvent(EventStatus, statusEvent(ch, assistant.StatusProcessing))
		go s.finishChannel(ch)
	}
}

// finishChannel stops the recorder and runs the clip through the
// transcription relay. Even a near-empty clip goes through the flow;
// silently discarding it would leave the user guessing.
func (s *Service) finishChannel(ch capture.Channel) {
	clip, err := s.recorders[ch].Stop()
	if err != nil {
		s.setStatus(ch, assistant.StatusIdle)
		slog.Error("stop capture", "channel", ch.String(), "error", err)
		s.emitError(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	text, err := s.backend.Transcribe(ctx, clip)

	s.mu.Lock()
	s.statuses[ch] = assistant.StatusIdle
	if err != nil {
		s.mu.Unlock()
		slog.Error("transcribe", "channel", ch.String(), "error", err)
		s.emitError(err)
		s.emitEvent(EventStatus, statusEvent(ch, assistant.StatusIdle))
		return
	}
	s.session.AppendTranscript(text)
	question := s.session.Question
	s.mu.Unlock()

	s.emitEvent(EventStatus, statusEvent(ch, assistant.StatusIdle))
	s.emitEvent(EventQuestion, question)
	slog.Info("transcript appended", "channel", ch.String(), "chars", len(text))
}

func (s *Service) setStatus(ch capture.Channel, st assistant.Status) {
	s.mu.Lock()
	s.statuses[ch] = st
	s.mu.Unlock()
	s.emitEvent(EventStatus, statusEvent(ch, st))
}

// ─────────────────────────────────────────────────────────────────────────────
// Event emission
// ─────────────────────────────────────────────────────────────────────────────

func (s *Service) emitEvent(name string, data any) {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()
	emit(name, data)
}

// emitError folds any failure into one user-visible banner event. Errors
// never clear the user's in-progress question or screenshot.
func (s *Service) emitError(err error) {
	s.emitEvent(EventAskError, classify(err))
}

// EmitDegraded surfaces a failed capture-exclusion request.
func (s *Service) EmitDegraded(reason string) {
	s.emitEvent(EventDegraded, reason)
}

// classify maps the error taxonomy onto user-facing messaging.
func classify(err error) ErrorEvent {
	switch {
	case errors.Is(err, backend.ErrRateLimited):
		return ErrorEvent{Kind: "rate-limited", Message: "Slow down, too many requests. Wait a moment and try again."}
	case errors.Is(err, backend.ErrOutOfTokens):
		return ErrorEvent{Kind: "out-of-tokens", Message: "No tokens remaining. Upgrade your plan to continue."}
	case errors.Is(err, backend.ErrUnauthorized):
		return ErrorEvent{Kind: "unauthorized", Message: "Sign in required. Check your API token in settings."}
	case errors.Is(err, backend.ErrUnconfigured):
		return ErrorEvent{Kind: "unconfigured", Message: "The service is not configured. This needs attention on the server side."}
	case errors.Is(err, capture.ErrNoLoopbackDevice):
		return ErrorEvent{Kind: "needs-audio-driver", Message: "System audio capture needs a virtual audio driver (e.g. BlackHole or VB-Cable)."}
	case errors.Is(err, capture.ErrPermissionDenied):
		return ErrorEvent{Kind: "permission-denied", Message: "Screen recording permission is required. Grant it in system settings."}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorEvent{Kind: "timeout", Message: "The request timed out. Your input is preserved, try again."}
	default:
		return ErrorEvent{Kind: "error", Message: "Something went wrong. Your input is preserved, try again."}
	}
}
