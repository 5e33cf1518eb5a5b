package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"gitgotchi/internal/config"
)

const (
	// filePrefix names the rotated files: app.YYYY-MM-DD.log
	filePrefix = "app"

	dirPermissions  = 0755
	filePermissions = 0644

	// MaxMessageLength caps frontend messages
	MaxMessageLength = 4000

	// MaxDataKeys caps the number of fields a frontend entry may carry
	MaxDataKeys = 32

	// MaxDataValueLength caps individual string fields
	MaxDataValueLength = 500
)

// sensitiveKeys are redacted from frontend log data (substring match, lowercase)
var sensitiveKeys = []string{
	"password", "token", "secret", "apikey", "api_key", "authorization",
	"credential", "cookie",
}

var validLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	file    *dailyFile
	runID   = uuid.NewString()
)

// RunID identifies this process in the logs
func RunID() string {
	return runID
}

// Init installs the process logger described by cfg. Records go to a daily
// file under cfg.Dir and, when cfg.Console is set, to stdout as well.
func Init(cfg config.LogConfig) error {
	f, err := openDailyFile(cfg.Dir, filePrefix, cfg.MaxAge)
	if err != nil {
		return err
	}

	var out io.Writer = f
	if cfg.Console {
		out = io.MultiWriter(f, os.Stdout)
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler).With("runId", runID)

	mu.Lock()
	old := file
	current = logger
	file = f
	mu.Unlock()

	if old != nil {
		old.Close()
	}
	slog.SetDefault(logger)
	return nil
}

// Close flushes and closes the log file
func Close() error {
	mu.Lock()
	f := file
	file = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// Logger returns the process logger, falling back to slog's default before Init
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return slog.Default()
	}
	return current
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// With returns a logger carrying extra attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// LogEntry is a log record sent by the frontend
type LogEntry struct {
	Level   string         `json:"level"`
	Module  string         `json:"module"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// LogFromFrontend writes a frontend record after normalising its level,
// truncating the message and redacting sensitive fields.
func LogFromFrontend(entry LogEntry) {
	level := parseLevel(entry.Level)

	logger := Logger().With("source", "frontend", "module", entry.Module)
	if data := sanitizeData(entry.Data); len(data) > 0 {
		logger = logger.With("data", data)
	}

	logger.Log(context.Background(), level, truncate(entry.Message, MaxMessageLength))
}

func parseLevel(level string) slog.Level {
	if l, ok := validLevels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}

// truncate cuts s to at most limit bytes without splitting a rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...[truncated]"
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func sanitizeData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	result := make(map[string]any, min(len(data), MaxDataKeys+1))
	n := 0
	for key, value := range data {
		if n >= MaxDataKeys {
			result["_truncated"] = true
			break
		}
		n++

		if isSensitive(key) {
			result[key] = "[REDACTED]"
			continue
		}
		if s, ok := value.(string); ok {
			result[key] = truncate(s, MaxDataValueLength)
			continue
		}
		result[key] = value
	}
	return result
}
