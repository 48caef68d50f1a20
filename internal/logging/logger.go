package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide JSON logger on stdout. Dev runs log at
// DEBUG; everything else at INFO.
func Setup(appEnv string) *slog.JSONHandler {
	return setup(os.Stdout, appEnv)
}

func setup(w io.Writer, appEnv string) *slog.JSONHandler {
	level := slog.LevelInfo
	switch strings.ToLower(appEnv) {
	case "dev", "development":
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}
