package window

import (
	"context"
	"errors"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"gitgotchi/internal/logging"
)

// WailsController drives the main window through the Wails runtime
type WailsController struct {
	mu     sync.RWMutex
	ctx    context.Context
	native Native

	// setPosition is relative to the window's current monitor and in
	// logical units; only used when the native backend cannot move
	setPosition func(ctx context.Context, x, y int)
	screens     func(ctx context.Context) ([]runtime.Screen, error)
}

// NewWailsController creates a controller; it is unusable until Attach is
// called with the context Wails passes to OnStartup.
func NewWailsController(n Native) *WailsController {
	return &WailsController{
		native:      n,
		setPosition: runtime.WindowSetPosition,
		screens:     runtime.ScreenGetAll,
	}
}

// Attach binds the controller to the running window
func (c *WailsController) Attach(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

func (c *WailsController) context() (context.Context, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ctx == nil {
		return nil, ErrNoWindow
	}
	return c.ctx, nil
}

// SetClickThrough implements Controller
func (c *WailsController) SetClickThrough(enabled bool) error {
	if _, err := c.context(); err != nil {
		return err
	}
	if c.native == nil {
		return ErrUnsupported
	}
	if err := c.native.SetPassthrough(enabled); err != nil {
		return err
	}
	logging.Debug("Click-through updated", "enabled", enabled)
	return nil
}

// SetPosition implements Controller. The native backend places the window
// in desktop coordinates; without one the Wails runtime is used, which
// positions relative to the monitor the window is on.
func (c *WailsController) SetPosition(x, y int) error {
	ctx, err := c.context()
	if err != nil {
		return err
	}
	if c.native != nil {
		err := c.native.Move(x, y)
		if !errors.Is(err, ErrUnsupported) {
			return err
		}
	}
	c.setPosition(ctx, x, y)
	return nil
}

// ScreenSize implements Controller. The value is a fixed placeholder.
func (c *WailsController) ScreenSize() (int, int) {
	return PlaceholderWidth, PlaceholderHeight
}

// Displays implements Controller
func (c *WailsController) Displays() ([]Display, error) {
	ctx, err := c.context()
	if err != nil {
		return nil, err
	}

	screens, err := c.screens(ctx)
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(screens))
	for _, s := range screens {
		displays = append(displays, Display{
			Width:     s.Width,
			Height:    s.Height,
			IsPrimary: s.IsPrimary,
			IsCurrent: s.IsCurrent,
		})
	}
	return displays, nil
}

// Close releases the platform backend
func (c *WailsController) Close() error {
	if c.native == nil {
		return nil
	}
	return c.native.Close()
}
