package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ZerologLogger is a Logger backed by zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
	level  *atomic.Int32
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerolog creates a zerolog logger writing JSON lines to w, or to stdout when w is nil.
func NewZerolog(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stdout
	}

	inst := &ZerologLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
		level:  &atomic.Int32{},
	}
	inst.level.Store(int32(level))

	return inst
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.log(DebugLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.log(InfoLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.log(WarnLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.log(ErrorLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Fatal(msg string, keysAndValues ...any) {
	// zerolog exits the process itself after writing a fatal event
	l.logger.Fatal().Fields(keysAndValues).Msg(msg)
}

// With creates a child logger sharing the level of its parent.
func (l *ZerologLogger) With(keyValues ...any) Logger {
	return &ZerologLogger{
		logger: l.logger.With().Fields(keyValues).Logger(),
		level:  l.level,
	}
}

func (l *ZerologLogger) Level() Level {
	return Level(l.level.Load())
}

func (l *ZerologLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *ZerologLogger) log(level Level, msg string, keysAndValues []any) {
	if level < l.Level() {
		return
	}

	var event *zerolog.Event
	switch level {
	case DebugLevel:
		event = l.logger.Debug()
	case InfoLevel:
		event = l.logger.Info()
	case WarnLevel:
		event = l.logger.Warn()
	default:
		event = l.logger.Error()
	}

	event.Fields(keysAndValues).Msg(msg)
}
