//go:build darwin && cgo

package window

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework AppKit -framework Foundation

#include <AppKit/AppKit.h>
#include <stdlib.h>

static void onMain(void (^block)(void)) {
    if ([NSThread isMainThread]) {
        block();
    } else {
        dispatch_sync(dispatch_get_main_queue(), block);
    }
}

static NSWindow *findWindow(NSString *title) {
    for (NSWindow *w in [NSApp windows]) {
        if ([[w title] isEqualToString:title]) {
            return w;
        }
    }
    return nil;
}

// setIgnoresMouse returns 0 when no window carries the title.
int setIgnoresMouse(const char *title, int ignore) {
    __block int found = 0;
    NSString *t = [NSString stringWithUTF8String:title];
    onMain(^{
        NSWindow *w = findWindow(t);
        if (w != nil) {
            [w setIgnoresMouseEvents:(ignore ? YES : NO)];
            found = 1;
        }
    });
    return found;
}

// moveWindow places the top-left corner at physical pixel x, y measured
// from the top-left of the primary screen. Returns 0 when no window carries
// the title.
int moveWindow(const char *title, int x, int y) {
    __block int found = 0;
    NSString *t = [NSString stringWithUTF8String:title];
    onMain(^{
        NSWindow *w = findWindow(t);
        NSScreen *primary = [[NSScreen screens] firstObject];
        if (w == nil || primary == nil) {
            return;
        }
        CGFloat scale = [primary backingScaleFactor];
        NSPoint p = NSMakePoint(x / scale, NSMaxY([primary frame]) - y / scale);
        [w setFrameTopLeftPoint:p];
        found = 1;
    });
    return found;
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// cocoaNative toggles setIgnoresMouseEvents on the main NSWindow and moves
// it in screen coordinates, converting from physical pixels with the
// primary screen's backing scale.
type cocoaNative struct {
	mu    sync.Mutex
	title *C.char
}

// NewNative returns the Cocoa backend
func NewNative(title string) Native {
	return &cocoaNative{title: C.CString(title)}
}

func (n *cocoaNative) SetPassthrough(enabled bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.title == nil {
		return ErrNoWindow
	}

	ignore := C.int(0)
	if enabled {
		ignore = 1
	}
	if C.setIgnoresMouse(n.title, ignore) == 0 {
		return ErrNoWindow
	}
	return nil
}

func (n *cocoaNative) Move(x, y int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.title == nil {
		return ErrNoWindow
	}

	if C.moveWindow(n.title, C.int(x), C.int(y)) == 0 {
		return ErrNoWindow
	}
	return nil
}

func (n *cocoaNative) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.title != nil {
		C.free(unsafe.Pointer(n.title))
		n.title = nil
	}
	return nil
}
