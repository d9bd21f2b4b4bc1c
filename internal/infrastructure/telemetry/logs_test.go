package telemetry

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// skipWithoutCollector keeps collector-backed tests from hanging on machines
// without the local telemetry stack.
func skipWithoutCollector(t *testing.T, endpoint string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping collector-backed test in short mode")
	}
	conn, err := net.DialTimeout("tcp", endpoint, 250*time.Millisecond)
	if err != nil {
		t.Skipf("no OTLP collector listening on %s", endpoint)
	}
	_ = conn.Close()
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "corpfin-backend",
		Insecure:          true,
	}

	provider, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, provider.IsEnabled())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewLoggerProvider_Enabled(t *testing.T) {
	cfg := LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "corpfin-backend",
		Insecure:          true,
	}
	skipWithoutCollector(t, cfg.CollectorEndpoint)

	provider, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, provider.IsEnabled())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered)

	logger.Debug("solver iteration detail")
	logger.Info("projection complete")
	logger.Warn("revolver draw required")
	logger.Error("balance check failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "revolver draw required", entries[0].Message)
	assert.Equal(t, "balance check failed", entries[1].Message)
}

func TestLevelFilterCore_WithPreservesFilter(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered).With(zap.String("run_id", "run-9"))

	logger.Info("below threshold")
	logger.Warn("above threshold")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "above threshold", entries[0].Message)
	require.Len(t, entries[0].Context, 1)
	assert.Equal(t, "run_id", entries[0].Context[0].Key)
}

func TestNewBridgeCore_DisabledProvider(t *testing.T) {
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := newBridgeCore(provider, "corpfin-backend", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel), "disabled bridge should be a no-op core")

	core = newBridgeCore(nil, "corpfin-backend", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestCreateBridgedLoggerFromConfig_DisabledProvider(t *testing.T) {
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	logger, err := CreateBridgedLoggerFromConfig(&BaseLoggerConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, provider, "corpfin-backend")
	require.NoError(t, err)
	require.NotNil(t, logger)

	// The local side of the tee still works without a collector.
	logger.Info("projection complete", zap.Int("years", 5))
}
