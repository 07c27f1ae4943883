// Package logging configures the process-wide zerolog logger: console
// output always, plus an optional rotating file sink.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
	With().Timestamp().Logger()

// Setup initializes the base logger. verbosity maps to zerolog levels:
// silent → warn, verbose → debug, everything else → info.
// When logFile is non-empty, JSON lines are also written to a rotating file.
func Setup(verbosity, logFile string) {
	level := zerolog.InfoLevel
	switch verbosity {
	case "silent":
		level = zerolog.WarnLevel
	case "verbose":
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}

	var out io.Writer = console
	if logFile != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	}

	base = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// For returns a child logger tagged with the given component name.
func For(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
