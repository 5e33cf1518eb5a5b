package roaming

import (
	"context"
	"math"
	"sync"
	"time"

	"gitgotchi/internal/logging"
)

// Mover places the character window
type Mover interface {
	SetPosition(x, y int) error
}

// Runner ticks an Engine at a fixed rate and moves the window to follow it
type Runner struct {
	engine   *Engine
	mover    Mover
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a stopped runner ticking fps times per second
func NewRunner(engine *Engine, mover Mover, fps int) *Runner {
	if fps < 1 {
		fps = 1
	}
	return &Runner{
		engine:   engine,
		mover:    mover,
		interval: time.Second / time.Duration(fps),
	}
}

// Engine returns the simulated character
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Start begins ticking until Stop is called or ctx is done. Starting a
// running runner is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
	logging.Info("Roaming started", "interval", r.interval)
}

// Stop halts the loop and waits for it to exit
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logging.Info("Roaming stopped")
}

// Running reports whether the loop is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.tick(); err != nil {
				logging.Warn("Roaming halted: window move failed", "error", err)
				r.mu.Lock()
				if r.done == done {
					r.cancel()
					r.cancel, r.done = nil, nil
				}
				r.mu.Unlock()
				return
			}
		}
	}
}

// tick advances one frame and moves the window's top-left corner so that
// the window is centred on the character
func (r *Runner) tick() error {
	st := r.engine.Step()
	size := r.engine.CharacterSize()
	x := int(math.Round(st.Position.X - size.Width/2))
	y := int(math.Round(st.Position.Y - size.Height/2))
	return r.mover.SetPosition(x, y)
}
