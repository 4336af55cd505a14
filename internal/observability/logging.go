package observability

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevelEnv selects the bridge log level.
const LogLevelEnv = "PERPFFI_LOG_LEVEL"

// NewLoggerWithLevel creates a structured JSON logger writing to w. The
// library logs to stderr; stdout belongs to the host process.
func NewLoggerWithLevel(w io.Writer, component string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLogLevel maps a level name to a zerolog level, falling back to warn.
func ParseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
