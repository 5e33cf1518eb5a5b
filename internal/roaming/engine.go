// Package roaming simulates the character walking, jumping, falling and
// swinging around the screen, one frame at a time.
package roaming

import (
	"errors"
	"math"
	"sync"
)

// Physics constants, in pixels and frames
const (
	Gravity         = 0.5
	AirResistance   = 0.98
	BounceDampening = 0.6
	GroundFriction  = 0.85
	MaxFallSpeed    = 15.0
	WalkSpeed       = 2.0
	AirControl      = 0.3
	JumpForce       = -12.0
	RopeLength      = 100.0
	SwingGravity    = 0.7
	SwingRetention  = 0.95
	TitleBarHeight  = 30.0
)

// ErrInvalidDirection is returned by Walk for anything but -1 or 1
var ErrInvalidDirection = errors.New("walk direction must be -1 (left) or 1 (right)")

// Vec is a 2D position or velocity
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WindowInfo is a desktop window whose title bar the character can land on
type WindowInfo struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Title  string  `json:"title"`
}

// State is the character's physical state. Position is the centre of the
// character.
type State struct {
	Position   Vec  `json:"position"`
	Velocity   Vec  `json:"velocity"`
	Grounded   bool `json:"grounded"`
	Swinging   bool `json:"swinging"`
	RopeAnchor *Vec `json:"ropeAnchor,omitempty"`
}

func (s State) clone() State {
	if s.RopeAnchor != nil {
		a := *s.RopeAnchor
		s.RopeAnchor = &a
	}
	return s
}

// Engine advances the simulation. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	state   State
	screen  Size
	size    Size
	windows []WindowInfo
}

// NewEngine places a character of the given size at start inside screen
func NewEngine(screen Size, start Vec, size Size) *Engine {
	return &Engine{
		screen: screen,
		size:   size,
		state:  State{Position: start},
	}
}

// CharacterSize returns the character's bounding box
func (e *Engine) CharacterSize() Size {
	return e.size
}

// Step advances one frame and returns the new state
func (e *Engine) Step() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Swinging && e.state.RopeAnchor != nil {
		e.swing()
	} else {
		e.fall()
	}
	e.clampToScreen()
	e.landOnWindows()

	return e.state.clone()
}

func (e *Engine) swing() {
	s := &e.state
	anchor := *s.RopeAnchor

	dx := s.Position.X - anchor.X
	dy := s.Position.Y - anchor.Y
	dist := math.Hypot(dx, dy)

	// taut rope: pull back onto the circle and redirect motion along the tangent
	if dist > RopeLength {
		ratio := RopeLength / dist
		s.Position.X = anchor.X + dx*ratio
		s.Position.Y = anchor.Y + dy*ratio

		speed := math.Hypot(s.Velocity.X, s.Velocity.Y)
		tangent := math.Atan2(dy, dx) + math.Pi/2
		s.Velocity.X = math.Cos(tangent) * speed * SwingRetention
		s.Velocity.Y = math.Sin(tangent) * speed * SwingRetention
	}

	s.Velocity.Y += Gravity * SwingGravity
	s.Velocity.X *= AirResistance
	s.Velocity.Y *= AirResistance

	s.Position.X += s.Velocity.X
	s.Position.Y += s.Velocity.Y
}

func (e *Engine) fall() {
	s := &e.state

	if !s.Grounded {
		s.Velocity.Y = math.Min(s.Velocity.Y+Gravity, MaxFallSpeed)
	}

	if s.Grounded {
		s.Velocity.X *= GroundFriction
	} else {
		s.Velocity.X *= AirResistance
	}
	s.Velocity.Y *= AirResistance

	s.Position.X += s.Velocity.X
	s.Position.Y += s.Velocity.Y
}

func (e *Engine) clampToScreen() {
	s := &e.state
	halfW, halfH := e.size.Width/2, e.size.Height/2

	if s.Position.X-halfW < 0 {
		s.Position.X = halfW
		s.Velocity.X *= -BounceDampening
	}
	if s.Position.X+halfW > e.screen.Width {
		s.Position.X = e.screen.Width - halfW
		s.Velocity.X *= -BounceDampening
	}
	if s.Position.Y-halfH < 0 {
		s.Position.Y = halfH
		s.Velocity.Y *= -BounceDampening
	}

	if s.Position.Y+halfH >= e.screen.Height {
		s.Position.Y = e.screen.Height - halfH
		s.Velocity.Y = 0
		s.Grounded = true
	} else {
		s.Grounded = false
	}
}

// landOnWindows stops a falling character on any title bar it overlaps
func (e *Engine) landOnWindows() {
	s := &e.state
	halfW, halfH := e.size.Width/2, e.size.Height/2
	left, right := s.Position.X-halfW, s.Position.X+halfW
	top, bottom := s.Position.Y-halfH, s.Position.Y+halfH

	for _, w := range e.windows {
		overlaps := right > w.X && left < w.X+w.Width &&
			bottom > w.Y && top < w.Y+TitleBarHeight
		if overlaps && s.Velocity.Y > 0 {
			s.Position.Y = w.Y - halfH
			s.Velocity.Y = 0
			s.Grounded = true
		}
	}
}

// AttachRope starts swinging from anchor
func (e *Engine) AttachRope(anchor Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Swinging = true
	e.state.RopeAnchor = &anchor
	e.state.Grounded = false
}

// ReleaseRope lets go of the rope
func (e *Engine) ReleaseRope() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Swinging = false
	e.state.RopeAnchor = nil
}

// Jump only works from the ground
func (e *Engine) Jump() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Grounded {
		e.state.Velocity.Y = JumpForce
		e.state.Grounded = false
	}
}

// Walk sets the walking direction: -1 left, 1 right. In the air only a
// fraction of the walk speed is applied.
func (e *Engine) Walk(direction int) error {
	if direction != -1 && direction != 1 {
		return ErrInvalidDirection
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	d := float64(direction)
	if e.state.Grounded {
		e.state.Velocity.X = d * WalkSpeed
	} else {
		e.state.Velocity.X += d * WalkSpeed * AirControl
	}
	return nil
}

// SetWindows replaces the windows used for title-bar landing
func (e *Engine) SetWindows(windows []WindowInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.windows = append([]WindowInfo(nil), windows...)
}

// Teleport moves the character without changing its velocity
func (e *Engine) Teleport(p Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Position = p
}

// ApplyForce adds an impulse to the velocity
func (e *Engine) ApplyForce(f Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Velocity.X += f.X
	e.state.Velocity.Y += f.Y
}

// State returns a copy of the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}
