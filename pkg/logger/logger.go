package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/devraulu/sitegraph/pkg/config"
)

// InitLogger installs the default slog logger. Logs go to stderr so that
// reports written to stdout can be piped.
func InitLogger(cfg *config.Config) {
	slog.SetDefault(New(os.Stderr, cfg))
}

func New(w io.Writer, cfg *config.Config) *slog.Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	json := cfg.Logging.Format == "json"

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Logging.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && json {
				// bunyan levels for JSON only
				level := a.Value.Any().(slog.Level)
				return slog.Int(a.Key, bunyanLevel(level))
			}
			return a
		},
	}

	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		"name", config.AppName,
		"pid", os.Getpid(),
		"hostname", hostname,
	)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func bunyanLevel(level slog.Level) int {
	switch {
	case level >= slog.LevelError:
		return 50
	case level >= slog.LevelWarn:
		return 40
	case level >= slog.LevelInfo:
		return 30
	case level >= slog.LevelDebug:
		return 20
	default:
		return 10
	}
}
