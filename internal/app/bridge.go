package app

import "go.ghostpane.dev/ghostpane/internal/types"

// Bridge is the only surface bound to the webview. Lifecycle control
// (Start, Shutdown, Dispatch, emitter wiring) stays on Service, out of
// the frontend's reach.
type Bridge struct {
	svc *Service
}

// Bridge returns the frontend-facing facade.
func (s *Service) Bridge() *Bridge { return &Bridge{svc: s} }

func (b *Bridge) GetState() types.UIState              { return b.svc.GetState() }
func (b *Bridge) SetQuestion(text string)              { b.svc.SetQuestion(text) }
func (b *Bridge) SetLanguage(lang string) error        { return b.svc.SetLanguage(lang) }
func (b *Bridge) ListSources() ([]types.Source, error) { return b.svc.ListSources() }
func (b *Bridge) SetOpacity(v float64) error           { return b.svc.SetOpacity(v) }
func (b *Bridge) SetAlwaysOnTop(on bool)               { b.svc.SetAlwaysOnTop(on) }
func (b *Bridge) LastCode() string                     { return b.svc.LastCode() }
func (b *Bridge) CaptureScreenshot() error             { return b.svc.CaptureScreenshot() }
func (b *Bridge) CaptureRegionScreenshot() error       { return b.svc.CaptureRegionScreenshot() }
func (b *Bridge) Submit()                              { b.svc.Submit() }
func (b *Bridge) Clear()                               { b.svc.Clear() }
func (b *Bridge) ToggleMicrophone()                    { b.svc.ToggleMicrophone() }
func (b *Bridge) TogglePCAudio()                       { b.svc.TogglePCAudio() }
