// Package window wraps the host toolkit's control over the character window
// behind a small interface so command handlers can be exercised without a
// real display.
package window

import "errors"

var (
	// ErrNoWindow means the main window does not exist (yet)
	ErrNoWindow = errors.New("window not found")

	// ErrUnsupported means the native backend cannot perform the operation
	// on this platform or display server
	ErrUnsupported = errors.New("not supported on this platform")
)

// Placeholder screen geometry reported by ScreenSize. It is not read from the
// display; use Displays for real monitor data.
const (
	PlaceholderWidth  = 1920
	PlaceholderHeight = 1080
)

// Display describes one attached monitor
type Display struct {
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	IsPrimary bool `json:"isPrimary"`
	IsCurrent bool `json:"isCurrent"`
}

// Controller is the window capability the command handlers depend on
type Controller interface {
	// SetClickThrough makes the window ignore (true) or capture (false)
	// pointer events
	SetClickThrough(enabled bool) error
	// SetPosition moves the window's top-left corner to physical pixel x, y
	SetPosition(x, y int) error
	// ScreenSize reports the screen size the character roams in
	ScreenSize() (width, height int)
	// Displays enumerates attached monitors
	Displays() ([]Display, error)
}

// Native is the platform backend for what the toolkit cannot do itself:
// pointer passthrough and placement in desktop (virtual screen) coordinates.
// Methods return ErrUnsupported when the platform has no implementation.
type Native interface {
	SetPassthrough(enabled bool) error
	// Move places the window's top-left corner at physical pixel x, y of
	// the whole desktop
	Move(x, y int) error
	Close() error
}
