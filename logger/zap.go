package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is a Logger backed by a zap sugared logger.
type ZapLogger struct {
	logger *zap.SugaredLogger
	level  zap.AtomicLevel
}

var _ Logger = (*ZapLogger)(nil)

// NewZap creates a zap logger. It uses zap's development config when development is true,
// and the production config otherwise.
func NewZap(level Level, development bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))

	// skip the adapter frame so the caller of Debug/Info/... is reported
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: zl.Sugar(), level: cfg.Level}, nil
}

// NewZapFromLogger wraps an existing zap logger. The level of the returned logger only filters
// on top of the core level of zl.
func NewZapFromLogger(zl *zap.Logger, level Level) Logger {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zl.WithOptions(
		zap.AddCallerSkip(1),
		zap.IncreaseLevel(atomicLevel),
	)

	return &ZapLogger{logger: core.Sugar(), level: atomicLevel}
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warnw(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, keysAndValues...)
}

func (l *ZapLogger) Fatal(msg string, keysAndValues ...any) {
	l.logger.Fatalw(msg, keysAndValues...)
}

func (l *ZapLogger) With(keyValues ...any) Logger {
	return &ZapLogger{logger: l.logger.With(keyValues...), level: l.level}
}

func (l *ZapLogger) Level() Level {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarnLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	}

	return FatalLevel
}

func (l *ZapLogger) SetLevel(level Level) {
	l.level.SetLevel(toZapLevel(level))
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	}

	return zapcore.FatalLevel
}
