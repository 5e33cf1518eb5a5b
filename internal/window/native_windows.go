//go:build windows

package window

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procFindWindowExW    = user32.NewProc("FindWindowExW")
	procGetWindowLongPtr = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtr = user32.NewProc("SetWindowLongPtrW")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
)

const (
	wsExTransparent = 0x00000020
	wsExLayered     = 0x00080000

	swpNoSize     = 0x0001
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010
)

// gwlExStyle is GWL_EXSTYLE (-20); a variable so the conversion to uintptr
// sign-extends
var gwlExStyle int32 = -20

// win32Native marks the main window WS_EX_TRANSPARENT for click-through and
// places it with SetWindowPos. WebView2 apps are per-monitor DPI aware, so
// coordinates are physical pixels on the virtual screen.
type win32Native struct {
	title string
	pid   uint32

	mu   sync.Mutex
	hwnd windows.HWND
}

// NewNative returns the Win32 backend
func NewNative(title string) Native {
	return &win32Native{title: title, pid: windows.GetCurrentProcessId()}
}

// lookup walks top-level windows titled n.title until one owned by this
// process turns up; callers hold mu
func (n *win32Native) lookup() (windows.HWND, error) {
	if n.hwnd != 0 {
		return n.hwnd, nil
	}

	title, err := windows.UTF16PtrFromString(n.title)
	if err != nil {
		return 0, err
	}

	var after uintptr
	for {
		r, _, _ := procFindWindowExW.Call(0, after, 0, uintptr(unsafe.Pointer(title)))
		if r == 0 {
			return 0, ErrNoWindow
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(windows.HWND(r), &pid); err == nil && pid == n.pid {
			n.hwnd = windows.HWND(r)
			return n.hwnd, nil
		}
		after = r
	}
}

func (n *win32Native) SetPassthrough(enabled bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	hwnd, err := n.lookup()
	if err != nil {
		return err
	}

	style, _, _ := procGetWindowLongPtr.Call(uintptr(hwnd), uintptr(gwlExStyle))
	if enabled {
		style |= wsExLayered | wsExTransparent
	} else {
		style &^= wsExTransparent
	}

	r, _, callErr := procSetWindowLongPtr.Call(uintptr(hwnd), uintptr(gwlExStyle), style)
	if r == 0 && callErr != windows.ERROR_SUCCESS {
		n.hwnd = 0
		return fmt.Errorf("set extended window style: %w", callErr)
	}
	return nil
}

func (n *win32Native) Move(x, y int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	hwnd, err := n.lookup()
	if err != nil {
		return err
	}

	r, _, callErr := procSetWindowPos.Call(uintptr(hwnd), 0,
		uintptr(x), uintptr(y), 0, 0,
		swpNoSize|swpNoZOrder|swpNoActivate)
	if r == 0 {
		n.hwnd = 0
		return fmt.Errorf("set window position: %w", callErr)
	}
	return nil
}

func (n *win32Native) Close() error { return nil }
