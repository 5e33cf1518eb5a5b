package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const dateLayout = "2006-01-02"

// dailyFile is an io.Writer that switches to a new file when the date changes
// and prunes files older than maxAge.
type dailyFile struct {
	dir    string
	prefix string
	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	f       *os.File
	date    string
	pruning atomic.Bool
}

func openDailyFile(dir, prefix string, maxAge time.Duration) (*dailyFile, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, err
	}

	d := &dailyFile{dir: dir, prefix: prefix, maxAge: maxAge, now: time.Now}
	if err := d.open(d.now().Format(dateLayout)); err != nil {
		return nil, err
	}
	if err := d.link(); err != nil {
		slog.Warn("Failed to create log symlink", "dir", dir, "error", err)
	}
	return d, nil
}

// Write appends p to today's file. Link failures are logged only after mu is
// released because the process logger writes back into d.
func (d *dailyFile) Write(p []byte) (int, error) {
	n, linkErr, err := d.write(p)
	if linkErr != nil {
		slog.Warn("Failed to update log symlink", "dir", d.dir, "error", linkErr)
	}
	return n, err
}

func (d *dailyFile) write(p []byte) (n int, linkErr, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return 0, nil, os.ErrClosed
	}

	if today := d.now().Format(dateLayout); today != d.date {
		if err := d.open(today); err != nil {
			return 0, nil, err
		}
		linkErr = d.link()
		if d.pruning.CompareAndSwap(false, true) {
			go func() {
				defer d.pruning.Store(false)
				d.prune()
			}()
		}
	}
	n, err = d.f.Write(p)
	return n, linkErr, err
}

// open must be called with mu held (or before the file is shared)
func (d *dailyFile) open(date string) error {
	if d.f != nil {
		d.f.Close()
	}

	name := filepath.Join(d.dir, d.prefix+"."+date+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions)
	if err != nil {
		d.f = nil
		return err
	}
	d.f = f
	d.date = date
	return nil
}

// link points prefix.log at the current file. It must not log: callers hold
// mu. Symlinks commonly fail on Windows without developer mode.
func (d *dailyFile) link() error {
	link := filepath.Join(d.dir, d.prefix+".log")
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(d.f.Name(), link)
}

func (d *dailyFile) prune() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		slog.Warn("Failed to read log directory", "dir", d.dir, "error", err)
		return
	}

	cutoff := d.now().Add(-d.maxAge)
	for _, e := range entries {
		if e.IsDir() || !isDatedLog(e.Name(), d.prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(d.dir, e.Name())
			if err := os.Remove(path); err != nil {
				slog.Warn("Failed to remove old log file", "path", path, "error", err)
			}
		}
	}
}

// isDatedLog matches prefix.YYYY-MM-DD.log and rejects the prefix.log symlink
func isDatedLog(name, prefix string) bool {
	date, ok := strings.CutPrefix(name, prefix+".")
	if !ok {
		return false
	}
	date, ok = strings.CutSuffix(date, ".log")
	if !ok {
		return false
	}
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
