// Package hotkey binds OS-global key chords to logical actions.
package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"go.ghostpane.dev/ghostpane/internal/types"
)

// Binding maps one key chord to one logical action.
type Binding struct {
	Chord  []string
	Action types.Action
}

// DefaultBindings returns the fixed shortcut table. The primary modifier
// is the OS-conventional one: command on macOS, control elsewhere.
func DefaultBindings() []Binding {
	mod := "ctrl"
	if runtime.GOOS == "darwin" {
		mod = "command"
	}
	return []Binding{
		{Chord: []string{mod, "9"}, Action: types.ActionToggleVisibility},
		{Chord: []string{mod, "2"}, Action: types.ActionToggleMic},
		{Chord: []string{mod, "3"}, Action: types.ActionTogglePCAudio},
		{Chord: []string{mod, "4"}, Action: types.ActionScreenshot},
		{Chord: []string{mod, "shift", "c"}, Action: types.ActionClear},
		{Chord: []string{mod, "shift", "space"}, Action: types.ActionSubmit},
	}
}

// Manager owns the global keyboard hook for the life of the process.
// One physical chord press delivers exactly one action: the binding
// disarms on key-down and re-arms on key-up, so OS key repeat cannot
// double-fire.
type Manager struct {
	mu       sync.Mutex
	bindings []Binding
	dispatch func(types.Action)
	events   chan types.Action
	done     chan struct{}
	running  bool

	armedMu sync.Mutex
	armed   map[types.Action]bool
}

// New creates a manager delivering actions to dispatch in press order.
func New(bindings []Binding, dispatch func(types.Action)) *Manager {
	return &Manager{
		bindings: bindings,
		dispatch: dispatch,
		armed:    make(map[types.Action]bool),
	}
}

// Start validates and registers all bindings and starts the hook loop.
// A rejected registration is fatal at startup: an assistant without its
// shortcuts is useless, better to fail loudly than run half-wired.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey manager already running")
	}
	if err := validate(m.bindings); err != nil {
		return err
	}

	m.events = make(chan types.Action, 64)
	m.done = make(chan struct{})

	for _, b := range m.bindings {
		b := b
		m.arm(b.Action)
		hook.Register(hook.KeyDown, b.Chord, func(e hook.Event) {
			m.fire(b.Action)
		})
		hook.Register(hook.KeyUp, b.Chord, func(e hook.Event) {
			m.arm(b.Action)
		})
	}

	go m.dispatchLoop()
	go func() {
		s := hook.Start()
		<-hook.Process(s)
	}()

	m.running = true
	slog.Info("global shortcuts registered", "count", len(m.bindings))
	return nil
}

// Stop tears down the hook. Idempotent: safe to call repeatedly, and
// safe before Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	hook.End()
	close(m.done)
	m.running = false
	slog.Info("global shortcuts unregistered")
}

// fire enqueues one action. Delivery order matches press order because
// a single channel feeds a single dispatch goroutine.
func (m *Manager) fire(a types.Action) {
	m.armedMu.Lock()
	ok := m.armed[a]
	m.armed[a] = false
	m.armedMu.Unlock()
	if !ok {
		return
	}

	select {
	case m.events <- a:
	default:
		slog.Warn("hotkey queue full, dropping action", "action", a)
	}
}

func (m *Manager) arm(a types.Action) {
	m.armedMu.Lock()
	m.armed[a] = true
	m.armedMu.Unlock()
}

func (m *Manager) dispatchLoop() {
	for {
		select {
		case a := <-m.events:
			m.dispatch(a)
		case <-m.done:
			return
		}
	}
}

// validate rejects duplicate chords; two bindings must never share one.
func validate(bindings []Binding) error {
	seen := make(map[string]types.Action, len(bindings))
	for _, b := range bindings {
		if len(b.Chord) == 0 {
			return fmt.Errorf("empty chord for action %s", b.Action)
		}
		key := chordKey(b.Chord)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("chord %q bound to both %s and %s", key, prev, b.Action)
		}
		seen[key] = b.Action
	}
	return nil
}

func chordKey(chord []string) string {
	keys := make([]string, len(chord))
	for i, k := range chord {
		keys[i] = strings.ToLower(k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "+")
}
