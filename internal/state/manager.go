package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventDevMode is emitted with the new value whenever dev mode changes
const EventDevMode = "state:devmode"

// Manager owns the process-wide Flags. Every access holds mu for its whole
// duration.
type Manager struct {
	ctx      context.Context
	mu       sync.Mutex
	flags    Flags
	poisoned bool

	// emit is swapped in tests; nil means no Wails context yet
	emit func(ctx context.Context, name string, data ...interface{})
}

// NewManager creates the shared state with dev mode off
func NewManager() *Manager {
	return &Manager{
		flags: NewFlags(),
		emit:  runtime.EventsEmit,
	}
}

// SetContext attaches the Wails context used for change events
func (m *Manager) SetContext(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
}

// Update runs fn with exclusive access to the flags. If fn panics the
// manager is poisoned and the panic is returned as an error. The change
// event is emitted after the lock is released.
func (m *Manager) Update(fn func(f *Flags)) error {
	ctx, changed, devMode, err := m.apply(fn)
	if err != nil {
		return err
	}
	if changed && ctx != nil && m.emit != nil {
		m.emit(ctx, EventDevMode, devMode)
	}
	return nil
}

func (m *Manager) apply(fn func(f *Flags)) (ctx context.Context, changed, devMode bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return nil, false, false, ErrPoisoned
	}

	before := m.flags.DevMode
	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			ctx, changed, devMode = nil, false, false
			err = fmt.Errorf("%w: %v", ErrPoisoned, r)
		}
	}()

	fn(&m.flags)
	return m.ctx, m.flags.DevMode != before, m.flags.DevMode, nil
}

// Snapshot returns a copy of the flags
func (m *Manager) Snapshot() (Flags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return Flags{}, ErrPoisoned
	}
	return m.flags, nil
}

// SetDevMode stores the dev mode flag
func (m *Manager) SetDevMode(enabled bool) error {
	return m.Update(func(f *Flags) { f.DevMode = enabled })
}

// DevMode reads the dev mode flag
func (m *Manager) DevMode() (bool, error) {
	f, err := m.Snapshot()
	if err != nil {
		return false, err
	}
	return f.DevMode, nil
}
