package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds the root logger. Output is human-readable on a terminal and JSON
// otherwise. Unknown levels fall back to info.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// CronLogger adapts zerolog to the logger interface of robfig/cron.
type CronLogger struct {
	Log zerolog.Logger
}

func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
