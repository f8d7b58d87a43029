package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/volumekit/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level name", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevelName("warn"))
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Equal(t, "kept", decode(t, buf)["msg"])
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("node", "n1")))
		log.Info("msg")
		assert.Equal(t, "n1", decode(t, buf)["node"])
	})

	t.Run("context value", func(t *testing.T) {
		t.Parallel()
		type key struct{}
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("request_id", key{}))
		ctx := context.WithValue(context.Background(), key{}, "req-1")
		log.InfoContext(ctx, "msg")
		assert.Equal(t, "req-1", decode(t, buf)["request_id"])
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("development", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("dev", "volstated"), logger.WithOutput(buf))
		log.Debug("msg")
		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "service=volstated")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("prod", "volstated"), logger.WithOutput(buf))
		log.Debug("dropped")
		assert.Empty(t, buf.String())
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "volstated", entry["service"])
		assert.Equal(t, logger.EnvProduction, entry["env"])
	})
}

func TestInvalidOptionsPanic(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	assert.Panics(t, func() { logger.New(logger.WithLevelName("loud")) })
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := logger.Discard()
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestContextWithAttrs(t *testing.T) {
	t.Parallel()

	t.Run("attrs from context are added", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		ctx := logger.ContextWithAttrs(context.Background(), logger.Domain("volume"))
		ctx = logger.ContextWithAttrs(ctx, logger.ResourceID("vol-1"))
		log.InfoContext(ctx, "msg")

		entry := decode(t, buf)
		assert.Equal(t, "volume", entry["domain"])
		assert.Equal(t, "vol-1", entry["resource_id"])
	})

	t.Run("call site keys win", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		ctx := logger.ContextWithAttrs(context.Background(), logger.ResourceID("from-ctx"))
		log.InfoContext(ctx, "msg", logger.ResourceID("explicit"))

		assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"resource_id"`)))
		assert.Equal(t, "explicit", decode(t, buf)["resource_id"])
	})

	t.Run("parent context is not modified", func(t *testing.T) {
		t.Parallel()
		parent := logger.ContextWithAttrs(context.Background(), logger.Domain("attach"))
		_ = logger.ContextWithAttrs(parent, logger.Step("x"))
		assert.Len(t, logger.AttrsFromContext(parent), 1)
		assert.Same(t, parent, logger.ContextWithAttrs(parent))
	})
}
