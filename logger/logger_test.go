package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlogLogger(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlogWithWriter(&buf, InfoLevel, false, false)

	l.Debug("hidden", "key", 1)
	require.Zero(buf.Len())

	l.Info("frame sent", "remote_addr", "127.0.0.1:2575", "size", 42)

	var record map[string]any
	require.NoError(json.Unmarshal(buf.Bytes(), &record))
	require.Equal("frame sent", record["msg"])
	require.Equal("INFO", record["level"])
	require.Equal("127.0.0.1:2575", record["remote_addr"])
	require.Contains(record, "ts")
	require.NotContains(record, "time")

	buf.Reset()
	child := l.With("component", "mllp")
	child.Warn("slow reply")
	require.Contains(buf.String(), `"component":"mllp"`)

	// the child shares the level with its parent
	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, child.Level())

	buf.Reset()
	child.Debug("visible")
	require.Contains(buf.String(), "visible")

	l.SetLevel(FatalLevel)
	require.Equal(ErrorLevel, l.Level())
}

func TestSlogLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWithWriter(&buf, DebugLevel, false, true)

	l.Info("console output", "port", 2575)
	require.Contains(t, buf.String(), "console output")
	require.Contains(t, buf.String(), "2575")
}

func TestZapLogger(t *testing.T) {
	require := require.New(t)

	core, logs := observer.New(zap.DebugLevel)
	l := NewZapFromLogger(zap.New(core), InfoLevel)

	l.Debug("hidden")
	l.Info("connected", "host", "localhost")
	l.With("conn", 1).Error("failed", "error", "reset")

	require.Equal(2, logs.Len())
	entries := logs.All()
	require.Equal("connected", entries[0].Message)
	require.Equal("localhost", entries[0].ContextMap()["host"])
	require.Equal("failed", entries[1].Message)
	require.EqualValues(1, entries[1].ContextMap()["conn"])

	require.Equal(InfoLevel, l.Level())
	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, l.Level())
	l.Debug("visible")
	require.Equal(3, logs.Len())
}

func TestZerologLogger(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	l := NewZerolog(&buf, WarnLevel)

	l.Info("hidden")
	require.Zero(buf.Len())

	l.With("conn", "a").Warn("timeout", "after", "5s")
	line := strings.TrimSpace(buf.String())

	var record map[string]any
	require.NoError(json.Unmarshal([]byte(line), &record))
	require.Equal("timeout", record["message"])
	require.Equal("warn", record["level"])
	require.Equal("a", record["conn"])
	require.Equal("5s", record["after"])

	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, l.Level())
}

func TestSetDefault(t *testing.T) {
	require := require.New(t)

	prev := GetLogger()
	t.Cleanup(func() { SetDefault(prev) })

	m := NewMockLogger().AllowAll()
	SetDefault(m)
	require.Same(m, GetLogger())

	Info("default", "key", "value")
	With("component", "mllp").Warn("child")
	m.AssertCalled(t, "Info", "default", []any{"key", "value"})
	m.AssertCalled(t, "With", []any{"component", "mllp"})
	m.AssertCalled(t, "Warn", "child", []any(nil))

	SetDefault(nil)
	require.Same(m, GetLogger())
}

func TestMockLogger(t *testing.T) {
	m := NewMockLogger()
	m.On("Info", "hello", []any{"key", "value"}).Return()
	m.On("Level").Return(InfoLevel)

	var l Logger = m
	l.Info("hello", "key", "value")

	require.Equal(t, InfoLevel, l.Level())
	m.AssertExpectations(t)
}
