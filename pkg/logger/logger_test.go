package logger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-lookup-api/pkg/logger"
)

func TestNewLogger_Level(t *testing.T) {
	l, err := logger.NewLogger("", "weather-lookup-test", "warn")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l, err = logger.NewLogger("", "weather-lookup-test", "nonsense")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := logger.NewLogger(path, "weather-lookup-test", "info")
	require.NoError(t, err)

	l.Info().Msg("hello from test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello from test"))
	assert.Contains(t, string(data), `"service":"weather-lookup-test"`)
}

func TestNewFileLogger_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "http.log")

	l, err := logger.NewFileLogger(path)
	require.NoError(t, err)

	l.Info("outbound request")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"outbound request"`)
}

func TestRequestIDHook(t *testing.T) {
	var buf strings.Builder
	l := zerolog.New(&buf).Hook(logger.RequestIDHook{})

	ctx := logger.WithRequestID(context.Background(), "01J0000000000000000000TEST")
	l.Info().Ctx(ctx).Msg("with id")
	l.Info().Msg("without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"request_id":"01J0000000000000000000TEST"`)
	assert.NotContains(t, lines[1], "request_id")
}

func TestRequestID_Absent(t *testing.T) {
	_, ok := logger.RequestID(context.Background())
	assert.False(t, ok)
}
