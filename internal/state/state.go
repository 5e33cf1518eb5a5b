package state

import "errors"

// ErrPoisoned is returned once a mutation panicked while holding the lock.
// The flags may have been left half-written, so they are no longer served.
var ErrPoisoned = errors.New("shared state lock poisoned by a panic in a previous holder")

// Flags is the runtime-mutable application state. It lives in memory only
// and resets on restart.
type Flags struct {
	DevMode bool `json:"devMode"`
}

// NewFlags returns the startup state
func NewFlags() Flags {
	return Flags{DevMode: false}
}
