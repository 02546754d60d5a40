package logging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogmirror/pkg/logging"
)

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithCycle(ctx, "cycle-1")
	ctx = logging.WithCategory(ctx, "gloves")
	ctx = logging.WithManufacturer(ctx, "abiplos")
	ctx = logging.WithPhase(ctx, "availability")

	logging.FromContext(ctx).Info().Msg("applied diff")

	testLogger.AssertContains(t, `"cycle_id":"cycle-1"`)
	testLogger.AssertContains(t, `"category":"gloves"`)
	testLogger.AssertContains(t, `"manufacturer":"abiplos"`)
	testLogger.AssertContains(t, `"phase":"availability"`)
	assert.Equal(t, "cycle-1", logging.CycleID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Empty(t, logging.CycleID(context.Background()))
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"added":    2,
		"duration": 1500 * time.Millisecond,
		"error":    errors.New("boom"),
	})

	logging.Ctx(ctx).Warn().Msg("round failed")

	testLogger.AssertContains(t, `"added":2`)
	testLogger.AssertContains(t, `"error":"boom"`)
	testLogger.AssertContains(t, "round failed")
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Info().Str("category", "beanies").Msg("fetched")
	logging.Debug().Msg("debug line")

	captured.AssertContains(t, "beanies")
	assert.Len(t, captured.Lines(), 2)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestConfigure(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
	})

	t.Run("file output respects level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mirror.log")
		logging.Configure(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
			Fields: map[string]any{"service": "catalogmirror"},
		})

		logging.Info().Msg("info message")
		logging.Warn().Msg("warn message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "info message")
		assert.Contains(t, string(content), "warn message")
		assert.Contains(t, string(content), `"service":"catalogmirror"`)
	})

	t.Run("console format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:   "info",
			Format:  "console",
			Output:  path,
			NoColor: true,
		})
		logger.Info().Str("category", "gloves").Msg("hello")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "category=gloves")
		assert.NotContains(t, string(content), "{")
	})
}
