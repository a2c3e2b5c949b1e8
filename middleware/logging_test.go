package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/middleware"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	t.Run("logs handled request", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))
		p := middleware.LoggingWithConfig(middleware.LoggingConfig{Logger: log, LogHeaders: true})

		ctx := getContext(t,
			host.Field{Key: "User-Agent", Value: "test-agent"},
			host.Field{Key: "Authorization", Value: "Bearer secret"},
		)
		require.NoError(t, p.BeforeHandling(ctx))
		ctx.Res.Status(201)
		require.NoError(t, p.BeforeResponding(ctx))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "request handled", record["msg"])
		assert.Equal(t, "GET", record["method"])
		assert.Equal(t, "/api/items", record["path"])
		assert.EqualValues(t, 201, record["status_code"])
		assert.Equal(t, "test-agent", record["user_agent"])
		assert.Contains(t, record, "duration")

		headers, ok := record["headers"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "[REDACTED]", headers["authorization"])
		assert.Equal(t, "test-agent", headers["user-agent"])
		assert.NotContains(t, buf.String(), "secret")
	})

	t.Run("slow requests warn", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))
		p := middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:               log,
			SlowRequestThreshold: time.Nanosecond,
		})

		ctx := getContext(t)
		require.NoError(t, p.BeforeHandling(ctx))
		time.Sleep(time.Millisecond)
		require.NoError(t, p.BeforeResponding(ctx))

		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), `"slow":true`)
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		p := middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
			Skip:   func(req *host.Request) bool { return req.Path() == "/api/items" },
		})
		ctx := getContext(t)
		require.NoError(t, p.BeforeHandling(ctx))
		require.NoError(t, p.BeforeResponding(ctx))
		assert.Empty(t, buf.String())
	})
}
