package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewLogger wires the process logger: readable text on stderr plus a JSON
// stream appended to cfg.LogFile, so CLI runs leave a machine-parseable
// trail. The returned closer releases the log file.
//
// A broken log path must never stop a command from running, so the logger
// degrades to stderr only when the file cannot be opened.
func NewLogger(cfg Config) (*slog.Logger, func() error) {
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := slog.New(textHandler(os.Stderr, cfg.LogLevel))
		logger.Warn("log file unavailable, logging to stderr only",
			"file", cfg.LogFile, "error", err)
		return logger, func() error { return nil }
	}
	return fanoutLogger(os.Stderr, file, cfg.LogLevel), file.Close
}

// fanoutLogger duplicates every record to a text handler on console and a
// JSON handler on sink.
func fanoutLogger(console, sink io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		textHandler(console, level),
		slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level}),
	))
}

func textHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}
