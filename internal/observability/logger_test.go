// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/quill-cli/internal/config"
)

// syncBuffer is a goroutine safe zapcore.WriteSyncer over a bytes.Buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Sync() error { return nil }

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		require.NoError(t, Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "quill",
			Colors:      config.ColorConfig{Info: "green"},
		}, out))
		GetLogger().Info("Composed tweet")
		Sync()

		output := out.String()
		assert.Contains(t, output, colorGreen+"INFO"+colorReset)
		assert.Contains(t, output, "quill.")
		assert.Contains(t, output, "Composed tweet")
	})

	t.Run("unknown color falls back to a plain level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		require.NoError(t, Initialize(config.LoggerConfig{Level: "info", Format: "console", Colors: config.ColorConfig{Warn: "plaid"}}, out))
		GetLogger().Warn("careful")

		assert.Contains(t, out.String(), "WARN")
		assert.NotContains(t, out.String(), "\x1b[")
	})

	t.Run("json logger", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		require.NoError(t, Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "quill"}, out))
		GetLogger().Warn("Judge rejected the candidate", zap.Int("attempt", 2))

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(out.String()), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "quill", entry["logger"])
		assert.Equal(t, "Judge rejected the candidate", entry["msg"])
		assert.Equal(t, float64(2), entry["attempt"])
	})

	t.Run("level filtering", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		require.NoError(t, Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, out))
		GetLogger().Info("hidden")
		GetLogger().Error("shown")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
	})

	t.Run("writes to a rotating file", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		path := filepath.Join(t.TempDir(), "quill.log")

		require.NoError(t, Initialize(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&bytes.Buffer{})))
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(content), "\n", 2)[0]), &entry), "file output is always json")
		assert.Equal(t, "This should go to the file.", entry["msg"])
	})

	t.Run("only initializes once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		require.NoError(t, Initialize(config.LoggerConfig{Level: "info", ServiceName: "First", Format: "json"}, out))
		first := GetLogger()
		require.NoError(t, Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second", Format: "json"}, out))
		assert.Same(t, first, GetLogger())

		GetLogger().Info("test")
		assert.Contains(t, out.String(), "First")
		assert.NotContains(t, out.String(), "Second")
	})
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	assert.NotNil(t, GetLogger())
	Sync()
}

func TestInitTracing(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	shutdown, err := InitTracing("quill", &out)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "refine.run")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, out.String(), `"Name": "refine.run"`)
	assert.Contains(t, out.String(), "quill")
}
