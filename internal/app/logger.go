package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/config"
)

// redactedKeys name attributes that may carry credentials. Their values never
// reach the log output, whichever component logs them.
var redactedKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"authorization": true,
	"api_key":       true,
	"code":          true,
}

// NewLogger builds the process logger on stderr and makes it the slog default.
// Format "json" is for production; anything else is text with source
// locations. Level accepts debug, info, warn or error and defaults to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	jsonOut := strings.EqualFold(strings.TrimSpace(cfg.Format), "json")
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   !jsonOut,
		ReplaceAttr: redact,
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if jsonOut {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With(slog.String("app", "matterdesk"))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] && a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
