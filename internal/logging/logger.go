package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger: human-readable text in dev, JSON
// everywhere else.
func Setup(env string) {
	slog.SetDefault(slog.New(StdoutHandler(env)))
}

// StdoutHandler is the console handler Setup installs, exposed so it can be
// combined with the database handler once the DB is up.
func StdoutHandler(env string) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}
