package main

import (
	"context"
	"errors"
	"fmt"

	"gitgotchi/internal/command"
	"gitgotchi/internal/companion"
	"gitgotchi/internal/config"
	"gitgotchi/internal/logging"
	"gitgotchi/internal/roaming"
	"gitgotchi/internal/state"
	"gitgotchi/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Events emitted to the frontend
const (
	eventCompanionStatus = "companion:status"
	eventCompanionEvent  = "companion:event"
)

var errCompanionDisabled = errors.New("companion link is disabled")

// App struct
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.Config

	state    *state.Manager
	window   *window.WailsController
	commands *command.Handlers
	roamer   *roaming.Runner
	link     *companion.Client

	emit func(ctx context.Context, name string, data ...interface{})
}

// NewApp creates the application. Shared state and handlers exist before
// Wails starts so no bound call can observe a half-built App.
func NewApp(cfg config.Config) *App {
	return newApp(cfg, window.NewWailsController(window.NewNative(cfg.Window.Title)))
}

func newApp(cfg config.Config, win *window.WailsController) *App {
	st := state.NewManager()

	w, h := win.ScreenSize()
	size := float64(cfg.Roaming.CharacterSize)
	engine := roaming.NewEngine(
		roaming.Size{Width: float64(w), Height: float64(h)},
		roaming.Vec{X: float64(w) / 2, Y: size / 2},
		roaming.Size{Width: size, Height: size},
	)

	return &App{
		cfg:      cfg,
		state:    st,
		window:   win,
		commands: command.New(win, st),
		roamer:   roaming.NewRunner(engine, win, cfg.Roaming.FPS),
		emit:     runtime.EventsEmit,
	}
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	logging.Info("Application starting", "version", "0.1.0", "runId", logging.RunID())

	a.state.SetContext(ctx)
	a.window.Attach(ctx)

	if a.cfg.Companion.Enabled {
		a.link = companion.NewClient(a.cfg.Companion.URL, a.cfg.Companion.ReconnectInterval)
		a.link.SetStatusHandler(func(s companion.Status) {
			a.emit(a.ctx, eventCompanionStatus, s)
		})
		a.link.SetEventHandler(a.onCompanionEvent)
		go a.link.Run(a.ctx)
		logging.Info("Companion link started", "url", a.cfg.Companion.URL)
	}
}

// domReady is called once the window and its content exist
func (a *App) domReady(ctx context.Context) {
	// initial state: click-through on, best effort
	if err := a.commands.SetClickThrough(true); err != nil {
		logging.Debug("Initial click-through not applied", "error", err)
	}
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	a.roamer.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	if err := a.window.Close(); err != nil {
		logging.Warn("Failed to release window backend", "error", err)
	}
	logging.Info("Application stopped")
	logging.Close()
}

// onCompanionEvent forwards editor activity to the frontend while dev mode
// is on
func (a *App) onCompanionEvent(ev companion.Event) {
	dev, err := a.state.DevMode()
	if err != nil || !dev {
		return
	}
	a.emit(a.ctx, eventCompanionEvent, ev)
}

// ============================================
// Window Commands
// ============================================

// SetClickThrough lets pointer events pass through the window (true) or be
// captured by it (false)
func (a *App) SetClickThrough(enabled bool) error {
	return a.commands.SetClickThrough(enabled)
}

// MoveCharacter moves the window to physical pixel coordinates
func (a *App) MoveCharacter(x int32, y int32) error {
	return a.commands.MoveCharacter(x, y)
}

// GetScreenSize returns the (placeholder) screen size
func (a *App) GetScreenSize() (command.ScreenSize, error) {
	return a.commands.GetScreenSize()
}

// GetDisplays lists the attached monitors
func (a *App) GetDisplays() ([]window.Display, error) {
	return a.commands.GetDisplays()
}

// ============================================
// Dev Mode Commands
// ============================================

// SetDevMode stores the developer mode flag
func (a *App) SetDevMode(enabled bool) error {
	return a.commands.SetDevMode(enabled)
}

// IsDevMode reads the developer mode flag
func (a *App) IsDevMode() (bool, error) {
	return a.commands.IsDevMode()
}

// ============================================
// Companion Methods
// ============================================

// GetCompanionStatus returns the editor link state
func (a *App) GetCompanionStatus() companion.Status {
	if a.link == nil {
		return companion.Status{URL: a.cfg.Companion.URL}
	}
	return a.link.Status()
}

// SendToCompanion writes a JSON message to the editor extension
func (a *App) SendToCompanion(message map[string]interface{}) error {
	if a.link == nil {
		return companion.ErrNotConnected
	}
	return a.link.Send(message)
}

// ReconnectCompanion drops the editor link and redials immediately
func (a *App) ReconnectCompanion() error {
	if a.link == nil {
		return errCompanionDisabled
	}
	a.link.Reconnect()
	return nil
}

// ============================================
// Roaming Methods
// ============================================

// StartRoaming lets the character move around the screen on its own
func (a *App) StartRoaming() error {
	if a.ctx == nil {
		return fmt.Errorf("start roaming: %w", window.ErrNoWindow)
	}
	a.roamer.Start(a.ctx)
	return nil
}

// StopRoaming freezes the character where it is
func (a *App) StopRoaming() {
	a.roamer.Stop()
}

// IsRoaming reports whether the physics loop is running
func (a *App) IsRoaming() bool {
	return a.roamer.Running()
}

// Jump makes a grounded character jump
func (a *App) Jump() {
	a.roamer.Engine().Jump()
}

// Walk moves the character left (-1) or right (1)
func (a *App) Walk(direction int) error {
	return a.roamer.Engine().Walk(direction)
}

// AttachRope starts swinging from an anchor point
func (a *App) AttachRope(x, y float64) {
	a.roamer.Engine().AttachRope(roaming.Vec{X: x, Y: y})
}

// ReleaseRope lets go of the rope
func (a *App) ReleaseRope() {
	a.roamer.Engine().ReleaseRope()
}

// UpdateWindows sets the desktop windows the character can land on
func (a *App) UpdateWindows(windows []roaming.WindowInfo) {
	a.roamer.Engine().SetWindows(windows)
}

// TeleportCharacter puts the character's centre at x, y without moving it
// through the space in between
func (a *App) TeleportCharacter(x, y float64) {
	a.roamer.Engine().Teleport(roaming.Vec{X: x, Y: y})
}

// ApplyForce adds an impulse to the character, e.g. after a drag and throw
func (a *App) ApplyForce(x, y float64) {
	a.roamer.Engine().ApplyForce(roaming.Vec{X: x, Y: y})
}

// GetRoamingState returns the character's physical state
func (a *App) GetRoamingState() roaming.State {
	return a.roamer.Engine().State()
}

// ============================================
// Settings Methods
// ============================================

// GetSettings reads the settings file (defaults where unset)
func (a *App) GetSettings() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	cfg.Validate()
	return cfg, nil
}

// SaveSettings validates cfg and writes it to the settings file. Invalid
// values are replaced with defaults and reported as warnings. Changes take
// effect on the next launch.
func (a *App) SaveSettings(cfg config.Config) ([]string, error) {
	var warnings []string
	if verr := cfg.Validate(); verr != nil {
		warnings = verr.Warnings
	}

	path := config.Path()
	if err := config.Save(path, cfg); err != nil {
		logging.Error("Failed to save settings", "path", path, "error", err)
		return warnings, err
	}
	logging.Info("Settings saved", "path", path, "warnings", len(warnings))
	return warnings, nil
}

// ============================================
// Logging Methods
// ============================================

// LogFrontend records a log entry sent by the frontend
func (a *App) LogFrontend(entry logging.LogEntry) {
	logging.LogFromFrontend(entry)
}
