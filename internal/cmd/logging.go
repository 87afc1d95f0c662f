package cmd

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging installs the default slog logger: warnings to w, or debug
// with verbose. A non-empty logFile also receives every record through a
// size-rotated file. The returned func closes the file.
func setupLogging(w io.Writer, verbose bool, logFile string) func() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.Handler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	closeFn := func() {}

	if logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}

		handler = fanout{
			handler,
			slog.NewTextHandler(lj, &slog.HandlerOptions{Level: slog.LevelDebug}),
		}
		closeFn = func() { _ = lj.Close() }
	}

	slog.SetDefault(slog.New(handler))

	return closeFn
}
