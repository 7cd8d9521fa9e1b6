package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyTask       = "task"
	KeyMode       = "mode"
	KeyPage       = "page"
	KeyFragment   = "fragment"
	KeyPath       = "path"
	KeyBasePath   = "base_path"
	KeyDurationMS = "duration_ms"
	KeyFiles      = "files"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Page(file string) slog.Attr      { return slog.String(KeyPage, file) }
func Fragment(name string) slog.Attr  { return slog.String(KeyFragment, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func BasePath(p string) slog.Attr     { return slog.String(KeyBasePath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }

// Elapsed reports d under the duration_ms key.
func Elapsed(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
