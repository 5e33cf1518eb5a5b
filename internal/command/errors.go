package command

import "errors"

// Kind tells the frontend which collaborator failed
type Kind string

const (
	// KindToolkit covers window operations rejected by the host toolkit
	KindToolkit Kind = "toolkit"
	// KindState covers failures of the shared application state
	KindState Kind = "state"
)

// Error is returned by every handler. Error() yields the collaborator's own
// message unchanged so the text the frontend sees stays the same; Kind and Op
// are there for callers that want to tell the failures apart.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a command Error of kind k
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

func toolkitErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindToolkit, Op: op, Err: err}
}

func stateErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindState, Op: op, Err: err}
}
