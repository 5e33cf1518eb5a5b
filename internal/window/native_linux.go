//go:build linux

package window

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"gitgotchi/internal/logging"
)

// x11Native drives the main window over its own X connection. Click-through
// empties the window's input shape so every pointer event falls through to
// the window below; resetting the mask restores the default region. Moves
// are in root window coordinates, which span every monitor.
type x11Native struct {
	title string
	pid   uint

	mu  sync.Mutex
	xu  *xgbutil.XUtil
	win xproto.Window
}

// NewNative returns the X11 backend. The connection is opened lazily on
// first use so a Wayland-only session fails per call instead of at startup.
func NewNative(title string) Native {
	return &x11Native{title: title, pid: uint(os.Getpid())}
}

func (n *x11Native) connect() error {
	if n.xu != nil {
		return nil
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("%w: connect to X server: %v", ErrUnsupported, err)
	}
	if err := shape.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return fmt.Errorf("%w: X shape extension unavailable: %v", ErrUnsupported, err)
	}
	n.xu = xu
	return nil
}

// lookup finds our main window among the EWMH client windows. A window owned
// by this process with the expected title wins; otherwise the first window
// owned by this process is used.
func (n *x11Native) lookup() (xproto.Window, error) {
	if n.win != 0 {
		return n.win, nil
	}

	clients, err := ewmh.ClientListGet(n.xu)
	if err != nil {
		return 0, fmt.Errorf("list client windows: %w", err)
	}

	var fallback xproto.Window
	for _, w := range clients {
		pid, err := ewmh.WmPidGet(n.xu, w)
		if err != nil || pid != n.pid {
			continue
		}
		if name, _ := ewmh.WmNameGet(n.xu, w); name == n.title {
			n.win = w
			return w, nil
		}
		if fallback == 0 {
			fallback = w
		}
	}

	if fallback == 0 {
		return 0, ErrNoWindow
	}
	logging.Debug("Main window matched by pid only", "window", fallback, "title", n.title)
	n.win = fallback
	return fallback, nil
}

// window connects and resolves the main window; callers hold mu
func (n *x11Native) window() (xproto.Window, error) {
	if err := n.connect(); err != nil {
		return 0, err
	}
	return n.lookup()
}

func (n *x11Native) SetPassthrough(enabled bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	win, err := n.window()
	if err != nil {
		return err
	}

	conn := n.xu.Conn()
	if enabled {
		err = shape.RectanglesChecked(conn, shape.SoSet, shape.SkInput,
			xproto.ClipOrderingUnsorted, win, 0, 0, nil).Check()
	} else {
		err = shape.MaskChecked(conn, shape.SoSet, shape.SkInput,
			win, 0, 0, xproto.PixmapNone).Check()
	}
	if err != nil {
		// the window may have been recreated; look it up again next time
		n.win = 0
		return fmt.Errorf("set input shape: %w", err)
	}
	return nil
}

func (n *x11Native) Move(x, y int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := n.window()
	if err != nil {
		return err
	}

	win := xwindow.New(n.xu, id)
	geom, err := win.Geometry()
	if err != nil {
		n.win = 0
		return fmt.Errorf("read window geometry: %w", err)
	}

	// ask the window manager first so it keeps its frame in sync
	if err := ewmh.MoveresizeWindow(n.xu, id, x, y, geom.Width(), geom.Height()); err != nil {
		win.Move(x, y)
	}
	return nil
}

func (n *x11Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.xu != nil {
		n.xu.Conn().Close()
		n.xu = nil
		n.win = 0
	}
	return nil
}
