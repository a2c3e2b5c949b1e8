package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/plugin"
)

func newContext(path string) *handler.Context {
	raw := host.NewRequest(context.Background(), "GET", nil, nil, nil)
	raw.URL.Path = path
	return handler.NewContext(handler.NewRequest(raw), nil, nil)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		path   string
		want   bool
	}{
		{"*", "/anything", true},
		{"/api", "/api", true},
		{"/api", "/api/users", true},
		{"/api", "/apiv2", true},
		{"/api", "/", false},
		{"/admin", "/api", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, plugin.Matches(tt.prefix, tt.path), "%s on %s", tt.prefix, tt.path)
	}
}

func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) plugin.Hook {
		return func(*handler.Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	reg := plugin.NewRegistry()
	reg.Use("/api", plugin.Plugin{Name: "a", BeforeHandling: record("api-1")})
	reg.Use("*", plugin.Plugin{Name: "b", BeforeHandling: record("all-1")})
	reg.Use("/api", plugin.Plugin{Name: "c", BeforeHandling: record("api-2")})
	reg.Use("/admin", plugin.Plugin{Name: "d", BeforeHandling: record("admin")})

	require.NoError(t, reg.BeforeHandling(newContext("/api/users")))
	assert.Equal(t, []string{"api-1", "api-2", "all-1"}, calls)
	assert.Equal(t, []string{"a", "b", "c", "d"}, reg.Names())
	assert.Equal(t, 4, reg.Len())
}

func TestRegistryStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	var ran []string

	reg := plugin.NewRegistry()
	reg.Use("",
		plugin.Plugin{BeforeResponding: func(*handler.Context) error {
			ran = append(ran, "first")
			return errStop
		}},
		plugin.Plugin{BeforeResponding: func(*handler.Context) error {
			ran = append(ran, "second")
			return nil
		}},
	)

	err := reg.BeforeResponding(newContext("/"))
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, []string{"first"}, ran)
}

func TestRegistryBeforeParsing(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	reg.Use("/upload", plugin.Plugin{BeforeParsing: func(_ context.Context, req *host.Request) error {
		req.SetHeader("x-seen", "1")
		return nil
	}})

	hit := host.NewRequest(context.Background(), "POST", nil, nil, nil)
	hit.URL.Path = "/upload/file"
	require.NoError(t, reg.BeforeParsing(context.Background(), hit))
	assert.Equal(t, "1", hit.Header("x-seen"))

	miss := host.NewRequest(context.Background(), "POST", nil, nil, nil)
	miss.URL.Path = "/other"
	require.NoError(t, reg.BeforeParsing(context.Background(), miss))
	assert.False(t, miss.HasHeader("x-seen"))
}

func TestRegistryFreeze(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	reg.Freeze()
	reg.Freeze()

	assert.True(t, reg.Frozen())
	assert.PanicsWithValue(t, plugin.ErrFrozen, func() {
		reg.Use("*", plugin.Plugin{Name: "late"})
	})
}
