// Package command implements the operations the frontend invokes on the
// desktop shell. Each handler maps one request to one window or state call.
package command

import (
	"gitgotchi/internal/logging"
	"gitgotchi/internal/state"
	"gitgotchi/internal/window"
)

// ScreenSize is the result of GetScreenSize
type ScreenSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Handlers holds the collaborators shared by all commands
type Handlers struct {
	window window.Controller
	state  *state.Manager
}

// New creates the handler set
func New(w window.Controller, s *state.Manager) *Handlers {
	return &Handlers{window: w, state: s}
}

// SetClickThrough makes the window ignore or capture the pointer
func (h *Handlers) SetClickThrough(enabled bool) error {
	return toolkitErr("set_click_through", h.window.SetClickThrough(enabled))
}

// MoveCharacter moves the window to physical pixel coordinates x, y
func (h *Handlers) MoveCharacter(x, y int32) error {
	if err := h.window.SetPosition(int(x), int(y)); err != nil {
		logging.Debug("Move rejected", "x", x, "y", y, "error", err)
		return toolkitErr("move_character", err)
	}
	return nil
}

// GetScreenSize reports the roaming area. It never fails.
func (h *Handlers) GetScreenSize() (ScreenSize, error) {
	w, ht := h.window.ScreenSize()
	return ScreenSize{Width: uint32(w), Height: uint32(ht)}, nil
}

// SetDevMode stores the developer mode flag
func (h *Handlers) SetDevMode(enabled bool) error {
	if err := h.state.SetDevMode(enabled); err != nil {
		return stateErr("set_dev_mode", err)
	}
	logging.Info("Dev mode changed", "enabled", enabled)
	return nil
}

// IsDevMode reads the developer mode flag
func (h *Handlers) IsDevMode() (bool, error) {
	enabled, err := h.state.DevMode()
	if err != nil {
		return false, stateErr("is_dev_mode", err)
	}
	return enabled, nil
}

// GetDisplays lists the attached monitors
func (h *Handlers) GetDisplays() ([]window.Display, error) {
	displays, err := h.window.Displays()
	if err != nil {
		return nil, toolkitErr("get_displays", err)
	}
	return displays, nil
}
