package commons

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewApplicationLoggerDefaults(t *testing.T) {
	logger, err := NewApplicationLogger()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, logger.Level())
}

func TestNewApplicationLoggerLevelParsing(t *testing.T) {
	logger, err := NewApplicationLogger(Level("debug"))
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, logger.Level())

	_, err = NewApplicationLogger(Level("chatty"))
	assert.Error(t, err)
}

func TestNewApplicationLoggerWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(
		Name("lullai-test"),
		Path(dir),
		Level("debug"),
	)
	require.NoError(t, err)

	logger.Infof("starting %s", "up")
	logger.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "lullai-test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "starting up")
	assert.Contains(t, string(content), "lullai-test")
}

func TestBenchmarkLogsFunctionName(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(
		Name("bench"),
		Path(dir),
		Level("debug"),
	)
	require.NoError(t, err)

	logger.Benchmark("Store.Save", 42*time.Millisecond)
	logger.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "bench.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "benchmark")
	assert.Contains(t, string(content), "Store.Save")
}

func TestTracefCarriesTraceId(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(
		Name("trace"),
		Path(dir),
		Level("debug"),
	)
	require.NoError(t, err)

	ctx := WithTraceId(context.Background(), "abc-123")
	logger.Tracef(ctx, "handling %s", "request")
	logger.Tracef(context.Background(), "no trace here")
	logger.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "trace.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "abc-123")
	assert.Contains(t, string(content), "handling request")
	assert.Contains(t, string(content), "no trace here")
}

func TestTraceIdRoundTrip(t *testing.T) {
	assert.Empty(t, TraceId(context.Background()))

	ctx := WithTraceId(context.Background(), "trace-9")
	assert.Equal(t, "trace-9", TraceId(ctx))
}
