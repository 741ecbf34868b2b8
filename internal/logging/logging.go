package logging

import (
	"log/slog"
	"os"
)

// New builds the application logger writing structured records to stderr at
// the provided level.
func New(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
