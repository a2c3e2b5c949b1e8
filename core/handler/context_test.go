package handler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
)

type ctxKey string

func TestContextValues(t *testing.T) {
	t.Parallel()

	parent := context.WithValue(context.Background(), ctxKey("parent"), "p")
	raw := host.NewRequest(parent, "GET", nil, nil, nil)
	ctx := handler.NewContext(handler.NewRequest(raw), nil, nil)

	ctx.SetValue(ctxKey("user"), "gopher")

	assert.Equal(t, "gopher", ctx.Value(ctxKey("user")))
	assert.Equal(t, "p", ctx.Value(ctxKey("parent")))
	assert.Nil(t, ctx.Value(ctxKey("missing")))
	assert.NotNil(t, ctx.Env)
	assert.NotNil(t, ctx.Res)
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	raw := host.NewRequest(parent, "GET", nil, nil, nil)
	ctx := handler.NewContext(handler.NewRequest(raw), nil, nil)

	require.NoError(t, ctx.Err())
	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestContextWaitUntil(t *testing.T) {
	t.Parallel()

	t.Run("registrar", func(t *testing.T) {
		t.Parallel()

		var registered []func(context.Context) error
		raw := host.NewRequest(context.Background(), "GET", nil, nil, nil)
		ctx := handler.NewContext(handler.NewRequest(raw), nil, func(fn func(context.Context) error) {
			registered = append(registered, fn)
		})

		ctx.WaitUntil(func(context.Context) error { return errors.New("ignored") })
		ctx.WaitUntil(nil)
		assert.Len(t, registered, 1)
	})

	t.Run("detached goroutine", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		raw := host.NewRequest(parent, "GET", nil, nil, nil)
		ctx := handler.NewContext(handler.NewRequest(raw), nil, nil)
		cancel()

		done := make(chan error, 1)
		ctx.WaitUntil(func(c context.Context) error {
			done <- c.Err()
			return nil
		})
		assert.NoError(t, <-done)
	})
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	var nilMap map[string]any
	var nilPtr *struct{}

	for _, v := range []any{nil, "", []byte{}, false, 0, 0.0, nilMap, nilPtr} {
		assert.True(t, handler.IsEmpty(v), "%#v", v)
	}
	for _, v := range []any{"x", []byte("x"), true, 1, map[string]any{}, struct{}{}, []int{}} {
		assert.False(t, handler.IsEmpty(v), "%#v", v)
	}
}
