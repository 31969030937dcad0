package mathspan

import (
	"log/slog"

	"github.com/gogpu/mathspan/internal/logging"
)

// SetLogger configures the logger for mathspan and all its sub-packages.
// By default, mathspan produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by mathspan:
//   - [slog.LevelDebug]: pipeline stage timings, spans dropped during correlation
//   - [slog.LevelWarn]: bundled fonts that failed to parse
//
// Example:
//
//	mathspan.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger used by mathspan.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
