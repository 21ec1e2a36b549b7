package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewLogger_WritesServiceFieldToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill.log")

	l, err := newLogger(Config{Level: "debug", Encoding: "json", OutputPath: path, Service: "leaderkill"})
	require.NoError(t, err)

	l.Info("asked the leader to terminate", zap.Int("pid", 4242))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"leaderkill"`)
	assert.Contains(t, string(data), `"pid":4242`)
}

func TestNewLogger_RejectsUnwritablePath(t *testing.T) {
	_, err := newLogger(Config{OutputPath: filepath.Join(t.TempDir(), "missing", "kill.log")})
	assert.Error(t, err)
}

func readLog(t *testing.T, path string, l *zap.Logger) string {
	t.Helper()
	require.NoError(t, l.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCaller_DirectLoggerPointsAtCallSite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill.log")
	l, err := newLogger(Config{Level: "debug", Encoding: "json", OutputPath: path, Service: "leaderkill"})
	require.NoError(t, err)

	l.With(zap.String("store", "file:/tmp/js")).Info("Asked the leader to terminate")

	assert.Contains(t, readLog(t, path, l), `"caller":"logger/logger_test.go:`)
}

func TestCaller_PackageHelpersSkipTheirOwnFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kill.log")
	l, err := newLogger(Config{Level: "debug", Encoding: "json", OutputPath: path, Service: "leaderkill"})
	require.NoError(t, err)

	prev := globalLogger
	globalLogger = l
	t.Cleanup(func() { globalLogger = prev })

	Warn("Ignoring malformed node id")
	Debug("Obtained node id")

	out := readLog(t, path, l)
	assert.NotContains(t, out, `"caller":"logger/logger.go:`)
	assert.Equal(t, 2, strings.Count(out, `"caller":"logger/logger_test.go:`))
}
