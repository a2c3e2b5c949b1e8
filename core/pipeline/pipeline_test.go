package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/pipeline"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/response"
	"github.com/dmitrymomot/edgekit/core/router"
	"github.com/dmitrymomot/edgekit/core/validator"
)

func TestServeHandlerResult(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/users/{id}", nil, func(ctx *handler.Context) (any, error) {
		return map[string]any{"id": ctx.Req.Param("id")}, nil
	}))

	p := pipeline.New(r, pipeline.WithHost(&fakeHost{}))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/users/7", nil, nil))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"id":"7"}`, string(resp.Body))
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestServeValidationFailures(t *testing.T) {
	t.Parallel()

	schema := &validator.Schema{
		Headers: validator.Rules{"x-api-key": "required"},
		Query:   validator.Rules{"page": "numeric"},
		Cookies: validator.Rules{"sid": "required"},
		Body:    validator.Rules{"name": "required;min:2"},
	}

	tests := []struct {
		name    string
		target  string
		headers []host.Field
		body    string
		message string
	}{
		{
			name:    "headers",
			target:  "/items?page=1",
			headers: []host.Field{{Key: "cookies", Value: "sid=1"}},
			body:    `{"name":"ok"}`,
			message: "Invalid headers",
		},
		{
			name:    "query",
			target:  "/items?page=abc",
			headers: []host.Field{{Key: "X-Api-Key", Value: "k"}, {Key: "cookies", Value: "sid=1"}},
			body:    `{"name":"ok"}`,
			message: "Invalid query",
		},
		{
			name:    "cookies",
			target:  "/items?page=1",
			headers: []host.Field{{Key: "X-Api-Key", Value: "k"}},
			body:    `{"name":"ok"}`,
			message: "Invalid cookies",
		},
		{
			name:    "body",
			target:  "/items?page=1",
			headers: []host.Field{{Key: "X-Api-Key", Value: "k"}, {Key: "cookies", Value: "sid=1"}},
			body:    `{"name":"x"}`,
			message: "Invalid body",
		},
		{
			name:    "malformed body",
			target:  "/items?page=1",
			headers: []host.Field{{Key: "X-Api-Key", Value: "k"}, {Key: "cookies", Value: "sid=1"}},
			body:    `{"name":`,
			message: "Invalid body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var called atomic.Bool
			r := router.New()
			require.NoError(t, r.Add(http.MethodPost, "/items", schema, func(*handler.Context) (any, error) {
				called.Store(true)
				return "ok", nil
			}))

			p := pipeline.New(r, pipeline.WithValidator(validator.New()))
			resp := p.Serve(context.Background(), newRequest(t, "POST", tt.target, tt.headers, strBody(tt.body)))

			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.JSONEq(t, `{"message":"`+tt.message+`","code":400}`, string(resp.Body))
			assert.False(t, called.Load())
		})
	}
}

func TestServeValidatedValuesReachHandler(t *testing.T) {
	t.Parallel()

	var seenQuery any
	schema := &validator.Schema{
		Query: func(v any) bool {
			seenQuery = v
			return true
		},
		Body: validator.Rules{"name": "required"},
	}

	r := router.New()
	require.NoError(t, r.Add(http.MethodPost, "/search", schema, func(ctx *handler.Context) (any, error) {
		assert.True(t, ctx.Req.Validated())
		assert.Equal(t, map[string]any{"name": "gopher"}, ctx.Req.Body())
		assert.Equal(t, "abc", ctx.Req.Cookie("sid"))
		assert.Equal(t, "yes", ctx.Req.Headers()["x-flag"])
		return "done", nil
	}))

	p := pipeline.New(r, pipeline.WithValidator(validator.New()))
	resp := p.Serve(context.Background(), newRequest(t, "POST", "/search?x=1,2&y=true&z=hello",
		[]host.Field{{Key: "X-Flag", Value: "yes"}, {Key: "cookies", Value: "sid=abc"}},
		strBody(`{"name":"gopher"}`)))

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "done", string(resp.Body))
	assert.Equal(t, map[string]any{"x": []string{"1", "2"}, "y": true, "z": "hello"}, seenQuery)
}

func TestServeOversizedCookies(t *testing.T) {
	t.Parallel()

	var validated atomic.Bool
	schema := &validator.Schema{Cookies: func(any) bool {
		validated.Store(true)
		return true
	}}

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", schema, func(*handler.Context) (any, error) {
		return "never", nil
	}))

	p := pipeline.New(r, pipeline.WithValidator(validator.New()))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/",
		[]host.Field{{Key: "cookies", Value: "a=" + strings.Repeat("x", 1001)}}, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
	assert.False(t, validated.Load())
}

func TestServeOversizedCookiesBeforeHeaderSchema(t *testing.T) {
	t.Parallel()

	var headersChecked atomic.Bool
	schema := &validator.Schema{Headers: func(any) bool {
		headersChecked.Store(true)
		return false
	}}

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", schema, func(*handler.Context) (any, error) {
		return "never", nil
	}))

	p := pipeline.New(r, pipeline.WithValidator(validator.New()))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/",
		[]host.Field{{Key: "cookies", Value: "a=" + strings.Repeat("x", 1001)}}, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
	assert.False(t, headersChecked.Load())
}

func TestServeSkipsBodyWithoutBodySchema(t *testing.T) {
	t.Parallel()

	// A body that never arrives would time out if anything tried to read it.
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", &validator.Schema{Query: validator.Rules{}}, func(*handler.Context) (any, error) {
		return "ok", nil
	}))

	p := pipeline.New(r,
		pipeline.WithValidator(validator.New()),
		pipeline.WithConfig(pipeline.Config{BodyTimeout: 10 * time.Millisecond}),
	)
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/", nil, pr))
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestServeBodyTimeout(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	r := router.New()
	require.NoError(t, r.Add(http.MethodPost, "/", &validator.Schema{Body: validator.TextRules("required")}, func(*handler.Context) (any, error) {
		return "never", nil
	}))

	p := pipeline.New(r,
		pipeline.WithValidator(validator.New()),
		pipeline.WithConfig(pipeline.Config{BodyTimeout: 20 * time.Millisecond}),
	)
	resp := p.Serve(context.Background(), newRequest(t, "POST", "/", nil, pr))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
}

func TestServeTextAndFormBodies(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		r := router.New()
		require.NoError(t, r.Add(http.MethodPost, "/", &validator.Schema{Body: validator.TextRules("required;prefix:hi")},
			func(ctx *handler.Context) (any, error) {
				return ctx.Req.Body(), nil
			}))

		p := pipeline.New(r, pipeline.WithValidator(validator.New()))
		resp := p.Serve(context.Background(), newRequest(t, "POST", "/", nil, strBody("hi there")))
		assert.Equal(t, "hi there", string(resp.Body))
	})

	t.Run("multipart transform", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("name", "gopher"))
		require.NoError(t, w.Close())

		r := router.New()
		require.NoError(t, r.Add(http.MethodPost, "/", &validator.Schema{Body: validator.Rules{"name": "required"}, Transform: true},
			func(ctx *handler.Context) (any, error) {
				return ctx.Req.Body(), nil
			}))

		p := pipeline.New(r, pipeline.WithValidator(validator.New()))
		resp := p.Serve(context.Background(), newRequest(t, "POST", "/",
			[]host.Field{{Key: "Content-Type", Value: w.FormDataContentType()}}, &buf))

		require.Equal(t, http.StatusOK, resp.Status)
		assert.JSONEq(t, `{"name":"gopher"}`, string(resp.Body))
	})
}

func TestServeSchemaInertWithoutValidator(t *testing.T) {
	t.Parallel()

	schema := &validator.Schema{Query: validator.Rules{"q": "required"}}

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", schema, func(ctx *handler.Context) (any, error) {
		assert.False(t, ctx.Req.Validated())
		assert.Equal(t, map[string]any{"a": int64(1)}, ctx.Req.Query())
		return "ran", nil
	}))

	p := pipeline.New(r)
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/?a=1", nil, nil))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ran", string(resp.Body))
}

func TestServeHandlerChain(t *testing.T) {
	t.Parallel()

	t.Run("non-empty result stops chain", func(t *testing.T) {
		t.Parallel()

		var second atomic.Bool
		r := router.New()
		require.NoError(t, r.Add(http.MethodGet, "/", nil,
			func(*handler.Context) (any, error) { return "first", nil },
			func(*handler.Context) (any, error) { second.Store(true); return "second", nil },
		))

		resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
		assert.Equal(t, "first", string(resp.Body))
		assert.False(t, second.Load())
	})

	t.Run("empty result continues", func(t *testing.T) {
		t.Parallel()

		r := router.New()
		require.NoError(t, r.Add(http.MethodGet, "/", nil,
			func(ctx *handler.Context) (any, error) { ctx.SetValue("user", "gopher"); return nil, nil },
			func(ctx *handler.Context) (any, error) { return ctx.Value("user"), nil },
		))

		resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
		assert.Equal(t, "gopher", string(resp.Body))
	})

	t.Run("explicit body stops chain", func(t *testing.T) {
		t.Parallel()

		var second atomic.Bool
		r := router.New()
		require.NoError(t, r.Add(http.MethodGet, "/", nil,
			func(ctx *handler.Context) (any, error) { ctx.Res.Text("explicit"); return nil, nil },
			func(*handler.Context) (any, error) { second.Store(true); return "second", nil },
		))

		resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
		assert.Equal(t, "explicit", string(resp.Body))
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.False(t, second.Load())
	})

	t.Run("result wins over explicit body", func(t *testing.T) {
		t.Parallel()

		r := router.New()
		require.NoError(t, r.Add(http.MethodGet, "/", nil, func(ctx *handler.Context) (any, error) {
			ctx.Res.Text("explicit")
			return map[string]any{"code": 404, "msg": "x"}, nil
		}))

		resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, "22", resp.Header.Get("Content-Length"))
	})
}

func TestServeRedirectIsBodyless(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/old", nil, func(ctx *handler.Context) (any, error) {
		ctx.Res.Header("location", "/new")
		return "ignored", nil
	}))

	resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/old", nil, nil))
	assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "/new", resp.Header.Get("Location"))
}

func TestServePreflight(t *testing.T) {
	t.Parallel()

	var reached atomic.Bool
	reg := plugin.NewRegistry()
	reg.Use("*", plugin.Plugin{BeforeParsing: func(context.Context, *host.Request) error {
		reached.Store(true)
		return nil
	}})

	r := router.New()
	require.NoError(t, r.Add(http.MethodOptions, "/api", nil, func(*handler.Context) (any, error) {
		reached.Store(true)
		return "handler", nil
	}))

	p := pipeline.New(r, pipeline.WithPlugins(reg), pipeline.WithCORS("https://app.example"))

	t.Run("with requested headers", func(t *testing.T) {
		resp := p.Serve(context.Background(), newRequest(t, "OPTIONS", "/api", []host.Field{
			{Key: "Origin", Value: "https://app.example"},
			{Key: "Access-Control-Request-Method", Value: "POST"},
			{Key: "Access-Control-Request-Headers", Value: "x-token"},
		}, nil))

		assert.Equal(t, http.StatusNoContent, resp.Status)
		assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "x-token", resp.Header.Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "false", resp.Header.Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := p.Serve(context.Background(), newRequest(t, "OPTIONS", "/nowhere", []host.Field{
			{Key: "Origin", Value: "https://app.example"},
			{Key: "Access-Control-Request-Method", Value: "GET"},
		}, nil))

		assert.Equal(t, http.StatusNoContent, resp.Status)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Headers"))
	})

	assert.False(t, reached.Load())
}

func TestServePreflightWithoutCORS(t *testing.T) {
	t.Parallel()

	resp := pipeline.New(router.New()).Serve(context.Background(), newRequest(t, "OPTIONS", "/", []host.Field{
		{Key: "Origin", Value: "https://app.example"},
		{Key: "Access-Control-Request-Method", Value: "GET"},
	}, nil))

	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServeAllowOriginOnSuccess(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(*handler.Context) (any, error) { return "ok", nil }))

	resp := pipeline.New(r, pipeline.WithCORS("*")).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServeHooks(t *testing.T) {
	t.Parallel()

	var order []string
	reg := plugin.NewRegistry()
	reg.Use("/api", plugin.Plugin{
		Name: "trace",
		BeforeParsing: func(_ context.Context, req *host.Request) error {
			order = append(order, "parsing")
			req.SetHeader("x-injected", "1")
			return nil
		},
		BeforeHandling: func(ctx *handler.Context) error {
			order = append(order, "handling:"+ctx.Req.Header("x-injected"))
			return nil
		},
		BeforeResponding: func(ctx *handler.Context) error {
			order = append(order, "responding")
			ctx.Res.Header("x-hooked", "yes")
			return nil
		},
	})

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/api/users", nil, func(*handler.Context) (any, error) {
		order = append(order, "handler")
		return "ok", nil
	}))

	p := pipeline.New(r, pipeline.WithPlugins(reg), pipeline.WithValidator(validator.New()))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/api/users", nil, nil))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "yes", resp.Header.Get("X-Hooked"))
	assert.Equal(t, []string{"parsing", "handling:1", "handler", "responding"}, order)
	assert.True(t, reg.Frozen())
}

func TestServeHookFailureAborts(t *testing.T) {
	t.Parallel()

	var handled atomic.Bool
	reg := plugin.NewRegistry()
	reg.Use("*", plugin.Plugin{BeforeHandling: func(*handler.Context) error {
		return response.ErrUnauthorized
	}})

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(*handler.Context) (any, error) {
		handled.Store(true)
		return "ok", nil
	}))

	resp := pipeline.New(r, pipeline.WithPlugins(reg)).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.JSONEq(t, `{"message":"Unauthorized","code":401}`, string(resp.Body))
	assert.False(t, handled.Load())
}

type teapot struct{}

func (teapot) Error() string   { return "i'm a teapot" }
func (teapot) StatusCode() int { return http.StatusTeapot }

func TestServeErrorTranslation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fn     handler.HandlerFunc
		status int
		body   string
	}{
		{
			name:   "http error",
			fn:     func(*handler.Context) (any, error) { return nil, response.ErrConflict.WithMessage("taken") },
			status: http.StatusConflict,
			body:   `{"message":"taken","code":409}`,
		},
		{
			name:   "status coder",
			fn:     func(*handler.Context) (any, error) { return nil, teapot{} },
			status: http.StatusTeapot,
			body:   `{"message":"i'm a teapot","code":418}`,
		},
		{
			name:   "plain error",
			fn:     func(*handler.Context) (any, error) { return nil, errors.New("db down") },
			status: http.StatusInternalServerError,
			body:   `{"message":"Something Went Wrong","code":500}`,
		},
		{
			name:   "panic",
			fn:     func(*handler.Context) (any, error) { panic("boom") },
			status: http.StatusInternalServerError,
			body:   `{"message":"Something Went Wrong","code":500}`,
		},
		{
			name:   "unserializable result",
			fn:     func(*handler.Context) (any, error) { return map[string]any{"ch": make(chan int)}, nil },
			status: http.StatusInternalServerError,
			body:   `{"message":"Something Went Wrong","code":500}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New()
			require.NoError(t, r.Add(http.MethodGet, "/", nil, tt.fn))

			resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
			assert.Equal(t, tt.status, resp.Status)
			assert.JSONEq(t, tt.body, string(resp.Body))
		})
	}
}

func TestServeCustomErrorHandler(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(*handler.Context) (any, error) {
		return nil, errors.New("db down")
	}))
	require.NoError(t, r.Add(http.MethodGet, "/structured", nil, func(*handler.Context) (any, error) {
		return nil, response.ErrForbidden
	}))

	var got error
	p := pipeline.New(r, pipeline.WithErrorHandler(func(_ *host.Request, ctx *handler.Context, err error) *host.Response {
		got = err
		assert.NotNil(t, ctx)
		return host.NewResponse(http.StatusServiceUnavailable, nil, []byte("later"))
	}))

	resp := p.Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "later", string(resp.Body))
	assert.EqualError(t, got, "db down")

	resp = p.Serve(context.Background(), newRequest(t, "GET", "/structured", nil, nil))
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestServeNotFound(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodPost, "/users", nil, func(*handler.Context) (any, error) { return "ok", nil }))

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		resp := pipeline.New(r).Serve(context.Background(), newRequest(t, "GET", "/users", nil, nil))
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.JSONEq(t, `{"message":"Not Found","code":404}`, string(resp.Body))
	})

	t.Run("custom", func(t *testing.T) {
		t.Parallel()

		p := pipeline.New(r, pipeline.WithNotFound(func(ctx *handler.Context) (any, error) {
			ctx.Res.Status(http.StatusNotFound)
			return "nothing at " + ctx.Req.Path(), nil
		}))
		resp := p.Serve(context.Background(), newRequest(t, "GET", "/missing", nil, nil))
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "nothing at /missing", string(resp.Body))
	})
}

func TestServeCache(t *testing.T) {
	t.Parallel()

	cache := newMemCache()
	var calls atomic.Int32
	var hooks atomic.Int32

	reg := plugin.NewRegistry()
	reg.Use("*", plugin.Plugin{BeforeHandling: func(*handler.Context) error {
		hooks.Add(1)
		return nil
	}})

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/feed", nil, func(*handler.Context) (any, error) {
		return map[string]int32{"n": calls.Add(1)}, nil
	}))
	require.NoError(t, r.Add(http.MethodGet, "/fail", nil, func(*handler.Context) (any, error) {
		calls.Add(1)
		return nil, response.ErrBadRequest
	}))

	p := pipeline.New(r,
		pipeline.WithHost(&fakeHost{gw: memGateway{cache: cache}}),
		pipeline.WithPlugins(reg),
		pipeline.WithCache("pages"),
	)

	first := p.Serve(context.Background(), newRequest(t, "GET", "/feed?x=1", nil, nil))
	require.NoError(t, p.Background().Wait(time.Second))
	second := p.Serve(context.Background(), newRequest(t, "GET", "/feed?x=1", nil, nil))

	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), hooks.Load())
	assert.Equal(t, 1, cache.Puts())

	other := p.Serve(context.Background(), newRequest(t, "GET", "/feed?x=2", nil, nil))
	assert.JSONEq(t, `{"n":2}`, string(other.Body))

	p.Serve(context.Background(), newRequest(t, "GET", "/fail", nil, nil))
	require.NoError(t, p.Background().Wait(time.Second))
	assert.Equal(t, 2, cache.Puts(), "failed responses are not stored")
}

func TestServeCacheIgnoredWithoutGateway(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(*handler.Context) (any, error) {
		return calls.Add(1), nil
	}))

	p := pipeline.New(r, pipeline.WithHost(&fakeHost{}), pipeline.WithCache("pages"))
	p.Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	p.Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, int32(2), calls.Load())
}

func TestServeWaitUntil(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(ctx *handler.Context) (any, error) {
		ctx.WaitUntil(func(context.Context) error {
			close(done)
			return errors.New("unobservable")
		})
		return "queued", nil
	}))

	p := pipeline.New(r, pipeline.WithHost(&fakeHost{env: map[string]string{"REGION": "eu"}}))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, http.StatusOK, resp.Status)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background task did not run")
	}
	require.NoError(t, p.Background().Wait(time.Second))
}

func TestServeEnv(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Add(http.MethodGet, "/", nil, func(ctx *handler.Context) (any, error) {
		return ctx.Env["REGION"], nil
	}))

	p := pipeline.New(r, pipeline.WithHost(&fakeHost{env: map[string]string{"REGION": "eu"}}))
	resp := p.Serve(context.Background(), newRequest(t, "GET", "/", nil, nil))
	assert.Equal(t, "eu", string(resp.Body))
}

type recorder struct {
	dispatches atomic.Int32
	failures   atomic.Int32
	hits       atomic.Int32
}

func (r *recorder) ObserveDispatch(string, int, time.Duration) { r.dispatches.Add(1) }
func (r *recorder) StageFailed(string)                         { r.failures.Add(1) }
func (r *recorder) CacheLookup(hit bool) {
	if hit {
		r.hits.Add(1)
	}
}

func TestServeObserver(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := pipeline.New(router.New(), pipeline.WithObserver(rec))
	p.Serve(context.Background(), newRequest(t, "GET", "/missing", nil, nil))

	assert.Equal(t, int32(1), rec.dispatches.Load())
	assert.Equal(t, int32(1), rec.failures.Load())
}
