package roaming

import (
	"errors"
	"math"
	"testing"
)

var (
	screen    = Size{Width: 1920, Height: 1080}
	character = Size{Width: 200, Height: 200}
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFallingAppliesGravityAndDrag(t *testing.T) {
	e := NewEngine(screen, Vec{X: 500, Y: 300}, character)

	st := e.Step()

	wantVY := Gravity * AirResistance
	if !approx(st.Velocity.Y, wantVY) {
		t.Errorf("Velocity.Y = %v, want %v", st.Velocity.Y, wantVY)
	}
	if !approx(st.Position.Y, 300+wantVY) {
		t.Errorf("Position.Y = %v, want %v", st.Position.Y, 300+wantVY)
	}
	if st.Grounded {
		t.Error("Grounded after one frame mid-air")
	}
}

func TestFallSpeedIsCapped(t *testing.T) {
	e := NewEngine(Size{Width: 1920, Height: 100000}, Vec{X: 500, Y: 300}, character)
	e.ApplyForce(Vec{Y: 100})

	st := e.Step()
	if st.Velocity.Y > MaxFallSpeed {
		t.Errorf("Velocity.Y = %v exceeds MaxFallSpeed", st.Velocity.Y)
	}
}

func TestCharacterSettlesOnGround(t *testing.T) {
	e := NewEngine(screen, Vec{X: 500, Y: 300}, character)

	var st State
	for i := 0; i < 500; i++ {
		st = e.Step()
	}

	if !st.Grounded {
		t.Fatal("character never reached the ground")
	}
	if st.Position.Y != screen.Height-character.Height/2 {
		t.Errorf("Position.Y = %v, want %v", st.Position.Y, screen.Height-character.Height/2)
	}
	if st.Velocity.Y != 0 {
		t.Errorf("Velocity.Y = %v on the ground", st.Velocity.Y)
	}
}

func grounded(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(screen, Vec{X: 500, Y: screen.Height - character.Height/2}, character)
	if st := e.Step(); !st.Grounded {
		t.Fatal("setup: character not grounded")
	}
	return e
}

func TestJump(t *testing.T) {
	e := grounded(t)

	e.Jump()
	st := e.State()
	if st.Velocity.Y != JumpForce || st.Grounded {
		t.Fatalf("after Jump: %+v", st)
	}

	st = e.Step()
	if st.Grounded {
		t.Error("Grounded right after jumping")
	}
	if st.Velocity.Y >= 0 {
		t.Errorf("Velocity.Y = %v, want upward", st.Velocity.Y)
	}

	// no double jump
	before := e.State().Velocity.Y
	e.Jump()
	if got := e.State().Velocity.Y; got != before {
		t.Errorf("mid-air Jump changed Velocity.Y from %v to %v", before, got)
	}
}

func TestWalk(t *testing.T) {
	e := grounded(t)

	if err := e.Walk(1); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Velocity.X; got != WalkSpeed {
		t.Errorf("grounded Walk(1) Velocity.X = %v, want %v", got, WalkSpeed)
	}

	e.Jump()
	e.Teleport(Vec{X: 500, Y: 500})
	before := e.State().Velocity.X
	if err := e.Walk(-1); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Velocity.X; !approx(got, before-WalkSpeed*AirControl) {
		t.Errorf("air Walk(-1) Velocity.X = %v, want %v", got, before-WalkSpeed*AirControl)
	}

	for _, d := range []int{0, 2, -3} {
		if err := e.Walk(d); !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("Walk(%d) error = %v, want ErrInvalidDirection", d, err)
		}
	}
}

func TestWallBounce(t *testing.T) {
	e := NewEngine(screen, Vec{X: 120, Y: 500}, character)
	e.ApplyForce(Vec{X: -50})

	st := e.Step()

	if st.Position.X != character.Width/2 {
		t.Errorf("Position.X = %v, want clamped to %v", st.Position.X, character.Width/2)
	}
	want := -50 * AirResistance * -BounceDampening
	if !approx(st.Velocity.X, want) {
		t.Errorf("Velocity.X = %v, want %v", st.Velocity.X, want)
	}
}

func TestRopeKeepsCharacterNearAnchor(t *testing.T) {
	e := NewEngine(screen, Vec{X: 500, Y: 450}, character)
	anchor := Vec{X: 500, Y: 300}
	e.AttachRope(anchor)

	st := e.Step()
	if !st.Swinging || st.RopeAnchor == nil || *st.RopeAnchor != anchor {
		t.Fatalf("state = %+v, want swinging from %v", st, anchor)
	}

	dist := math.Hypot(st.Position.X-anchor.X, st.Position.Y-anchor.Y)
	if dist > RopeLength+1 {
		t.Errorf("distance from anchor = %v, want about %v", dist, RopeLength)
	}

	// returned state must not alias the engine's anchor
	st.RopeAnchor.X = 0
	if e.State().RopeAnchor.X != anchor.X {
		t.Error("State() exposed internal rope anchor")
	}

	e.ReleaseRope()
	if st := e.State(); st.Swinging || st.RopeAnchor != nil {
		t.Errorf("after ReleaseRope: %+v", st)
	}
}

func TestLandsOnTitleBar(t *testing.T) {
	e := NewEngine(screen, Vec{X: 500, Y: 490}, character)
	e.SetWindows([]WindowInfo{{X: 0, Y: 600, Width: 1000, Height: 400, Title: "editor"}})
	e.ApplyForce(Vec{Y: 14})

	st := e.Step()
	if !st.Grounded {
		t.Fatalf("did not land on title bar: %+v", st)
	}
	if st.Position.Y != 600-character.Height/2 {
		t.Errorf("Position.Y = %v, want %v", st.Position.Y, 600-character.Height/2)
	}
}

func TestRisingPassesThroughTitleBar(t *testing.T) {
	e := NewEngine(screen, Vec{X: 500, Y: 700}, character)
	e.SetWindows([]WindowInfo{{X: 0, Y: 600, Width: 1000, Height: 400}})
	e.ApplyForce(Vec{Y: -10})

	if st := e.Step(); st.Grounded {
		t.Errorf("rising character landed on title bar: %+v", st)
	}
}
