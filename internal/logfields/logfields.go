package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyProfile    = "profile"
	KeyEnv        = "env"
	KeyStep       = "step"
	KeyResult     = "result"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeyOutput     = "output"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Profile(p string) slog.Attr      { return slog.String(KeyProfile, p) }
func Env(e string) slog.Attr          { return slog.String(KeyEnv, e) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Output(o string) slog.Attr       { return slog.String(KeyOutput, o) }
func Event(op string) slog.Attr       { return slog.String(KeyEvent, op) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
