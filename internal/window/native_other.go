//go:build !linux && !windows && !(darwin && cgo)

package window

type unsupportedNative struct{}

// NewNative returns a backend that reports ErrUnsupported for everything
func NewNative(title string) Native {
	return unsupportedNative{}
}

func (unsupportedNative) SetPassthrough(bool) error { return ErrUnsupported }
func (unsupportedNative) Move(int, int) error       { return ErrUnsupported }
func (unsupportedNative) Close() error              { return nil }
