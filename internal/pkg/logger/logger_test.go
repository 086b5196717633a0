package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetLogger resets the global logger state between subtests.
func resetLogger() {
	logger = nil
	initOnce = sync.Once{}
}

func TestInit(t *testing.T) {
	t.Run("defaults to info level", func(t *testing.T) {
		resetLogger()

		require.NoError(t, Init())
		assert.NotNil(t, logger)
	})

	t.Run("accepts every standard level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			resetLogger()

			require.NoError(t, Init(WithLevel(level)))
			assert.NotNil(t, logger)
		}
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		resetLogger()

		assert.Error(t, Init(WithLevel("loud")))
		assert.Nil(t, logger)
	})

	t.Run("initializes only once", func(t *testing.T) {
		resetLogger()

		require.NoError(t, Init(WithLevel("debug")))
		first := logger

		require.NoError(t, Init(WithLevel("error")))
		assert.Equal(t, first, logger)
	})
}

func TestLogging(t *testing.T) {
	resetLogger()
	require.NoError(t, Init(WithLevel("debug")))

	ctx := t.Context()

	t.Run("levels do not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Debug(ctx, "debug message", "key", "value")
			Info(ctx, "info message", "key", "value")
			Warn(ctx, "warn message", "key", "value")
			Error(ctx, "error message", "key", "value")
		})
	})

	t.Run("no key-value pairs", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Info(ctx, "plain message")
		})
	})

	t.Run("odd number of key-value pairs", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Info(ctx, "message", "key1", "value1", "dangling")
		})
	})

	t.Run("sync flushes without panicking", func(t *testing.T) {
		assert.NotPanics(t, func() {
			_ = Sync()
		})
	})
}
