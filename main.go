package main

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gen2brain/beeep"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
	"go.ghostpane.dev/ghostpane/backend"
	"go.ghostpane.dev/ghostpane/capture"
	"go.ghostpane.dev/ghostpane/config"
	"go.ghostpane.dev/ghostpane/hotkey"
	"go.ghostpane.dev/ghostpane/internal/app"
	"go.ghostpane.dev/ghostpane/logging"
	"go.ghostpane.dev/ghostpane/overlay"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	windowWidth  = 600
	windowHeight = 700
	screenInset  = 20
)

// wailsWindow adapts the webview window to the overlay controller.
type wailsWindow struct {
	win application.Window
}

func (w wailsWindow) Show()  { w.win.Show() }
func (w wailsWindow) Hide()  { w.win.Hide() }
func (w wailsWindow) Focus() { w.win.Focus() }

func (w wailsWindow) SetAlwaysOnTop(b bool) { w.win.SetAlwaysOnTop(b) }

func (w wailsWindow) NativeWindowHandle() (uintptr, error) {
	ptr := w.win.NativeWindow()
	if ptr == nil {
		return 0, errors.New("native window not realized")
	}
	return uintptr(ptr), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	logging.Setup(cfg.Logging)
	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	controller := overlay.NewController(overlay.NewPolicy(), cfg.Opacity)
	client := backend.NewClient(cfg.BackendURL, cfg.APIToken)
	svc := app.New(cfg, controller, client, nil,
		capture.NewRecorder(capture.ChannelMicrophone),
		capture.NewRecorder(capture.ChannelSystemAudio),
	)

	hk := hotkey.New(hotkey.DefaultBindings(), svc.Dispatch)

	wailsApp := application.New(application.Options{
		Name:        "Ghostpane",
		Description: "Capture-invisible desktop assistant overlay",
		Services: []application.Service{
			application.NewService(svc.Bridge()),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// The overlay hides rather than closing; the tray keeps us alive.
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		SingleInstance: &application.SingleInstanceOptions{
			UniqueID: "dev.ghostpane.app",
			OnSecondInstanceLaunch: func(_ application.SecondInstanceData) {
				controller.Show()
			},
		},
	})

	tray := setupTray(wailsApp, svc, controller, hk)

	svc.SetEmitter(func(name string, data any) {
		wailsApp.Event.Emit(name, data)
		if name == app.EventTokens {
			if n, ok := data.(int); ok && n > 0 {
				tray.SetLabel(fmt.Sprintf("%d", n))
			}
		}
	})

	window := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:            "overlay",
		Title:           "Ghostpane",
		Width:           windowWidth,
		Height:          windowHeight,
		Frameless:       true,
		AlwaysOnTop:     true,
		Hidden:          true,
		BackgroundType:  application.BackgroundTypeTranslucent,
		URL:             "/",
		Mac: application.MacWindow{
			Backdrop: application.MacBackdropTranslucent,
		},
		Windows: application.WindowsWindow{
			HiddenOnTaskbar: true,
		},
	})

	placeTopRight(wailsApp, window)

	// Degraded protection is the one failure the user must hear about
	// even when the overlay is hidden.
	controller.OnDegraded(func(reason string) {
		svc.EmitDegraded(reason)
		if err := beeep.Notify("Ghostpane", "Screen-capture protection could not be applied: "+reason, ""); err != nil {
			slog.Warn("degraded notification", "error", err)
		}
	})

	// Exclusion must land before the window is ever shown. A failed
	// attach means no exclusion and no degraded signal, so it is fatal.
	if err := controller.Attach(wailsWindow{win: window}); err != nil {
		slog.Error("attach overlay window", "error", err)
		os.Exit(1)
	}
	controller.SetAlwaysOnTop(cfg.AlwaysOnTop)

	window.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		if controller.Visible() {
			controller.ToggleVisibility()
		}
	})
	window.RegisterHook(events.Common.WindowFocus, func(_ *application.WindowEvent) {
		controller.HandleFocus()
	})

	// An assistant without its shortcuts is useless; fail loudly.
	if err := hk.Start(); err != nil {
		slog.Error("start hotkeys", "error", err)
		os.Exit(1)
	}

	svc.Start()

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}

// placeTopRight pins the overlay to the top-right corner of the primary
// screen's work area.
func placeTopRight(wailsApp *application.App, window application.Window) {
	screen := wailsApp.Screen.GetPrimary()
	if screen == nil {
		slog.Warn("no primary screen for window placement")
		return
	}
	wa := screen.WorkArea
	window.SetPosition(wa.X+wa.Width-windowWidth-screenInset, wa.Y+screenInset)
}

func setupTray(wailsApp *application.App, svc *app.Service, controller *overlay.Controller, hk *hotkey.Manager) *application.SystemTray {
	tray := wailsApp.SystemTray.New()
	tray.SetIcon(trayIcon())

	menu := wailsApp.NewMenu()
	menu.Add("Show/Hide Overlay").
		SetAccelerator("CmdOrCtrl+9").
		OnClick(func(_ *application.Context) {
			controller.ToggleVisibility()
		})
	menu.Add("Capture Screenshot").
		SetAccelerator("CmdOrCtrl+4").
		OnClick(func(_ *application.Context) {
			go func() {
				if err := svc.CaptureScreenshot(); err != nil {
					slog.Error("screenshot from tray", "error", err)
				}
			}()
		})
	menu.Add("Capture Region").OnClick(func(_ *application.Context) {
		go func() {
			if err := svc.CaptureRegionScreenshot(); err != nil {
				slog.Error("region capture from tray", "error", err)
			}
		}()
	})
	menu.Add("Copy Last Code").OnClick(func(_ *application.Context) {
		code := svc.LastCode()
		if code == "" {
			return
		}
		if ok := wailsApp.Clipboard.SetText(code); !ok {
			slog.Warn("copy code to clipboard failed")
		}
	})
	menu.AddSeparator()
	menu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(_ *application.Context) {
			hk.Stop()
			svc.Shutdown()
			wailsApp.Quit()
		})

	tray.SetMenu(menu)
	return tray
}
