package response_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgekit/core/response"
)

func TestFormatNilState(t *testing.T) {
	t.Parallel()

	_, err := response.Format(nil)
	assert.ErrorIs(t, err, response.ErrNilState)
}

func TestFormatBodyless(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.Status(http.StatusNoContent).Header("x-a", "1")

	resp, err := response.Format(st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.Body)
	assert.Equal(t, "1", resp.Header.Get("X-A"))
}

func TestFormatResultString(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.SetResult("héllo")

	resp, err := response.Format(st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "6", resp.Header.Get("Content-Length"))
	assert.Equal(t, "héllo", string(resp.Body))
}

func TestFormatResultJSONCodeOverridesStatus(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.Status(http.StatusCreated)
	st.SetResult(map[string]any{"code": 404, "msg": "x"})

	resp, err := response.Format(st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"code":404,"msg":"x"}`, string(resp.Body))
	assert.Equal(t, "22", resp.Header.Get("Content-Length"))
}

func TestFormatResultJSONWithoutCode(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.Status(http.StatusAccepted)
	st.SetResult([]string{"a"})

	resp, err := response.Format(st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, `["a"]`, string(resp.Body))
}

func TestFormatResultInvalidCode(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.SetResult(map[string]int{"code": 42})

	_, err := response.Format(st)
	assert.ErrorIs(t, err, response.ErrInvalidStatus)
}

func TestFormatResultTakesPrecedence(t *testing.T) {
	t.Parallel()

	st := response.NewState()
	st.Text("explicit")
	st.SetResult(map[string]bool{"ok": true})

	resp, err := response.Format(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestFormatLocationIsBodyless(t *testing.T) {
	t.Parallel()

	t.Run("default status", func(t *testing.T) {
		t.Parallel()

		st := response.NewState()
		st.Text("ignored")
		st.Header("location", "/next")

		resp, err := response.Format(st)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
		assert.Nil(t, resp.Body)
		assert.Empty(t, resp.Header.Get("Content-Length"))
		assert.Equal(t, "/next", resp.Header.Get("Location"))
	})

	t.Run("explicit status", func(t *testing.T) {
		t.Parallel()

		st := response.NewState()
		st.Redirect("/moved", http.StatusMovedPermanently)

		resp, err := response.Format(st)
		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
	})

	t.Run("redirect default", func(t *testing.T) {
		t.Parallel()

		st := response.NewState()
		st.Redirect("/x", 0)

		resp, err := response.Format(st)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	})
}

// 301 keeps cache-control alongside 200 even though the response cache
// only stores 2xx responses.
func TestFormatCacheControl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kept   bool
	}{
		{http.StatusOK, true},
		{http.StatusMovedPermanently, true},
		{http.StatusCreated, false},
		{http.StatusFound, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			st := response.NewState()
			st.Status(tt.status).Header("Cache-Control", "max-age=60")

			resp, err := response.Format(st)
			require.NoError(t, err)
			if tt.kept {
				assert.Equal(t, "max-age=60", resp.Header.Get("Cache-Control"))
			} else {
				assert.Empty(t, resp.Header.Get("Cache-Control"))
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	resp := response.ErrorResponse(response.ErrPayloadTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Status)
	assert.JSONEq(t, `{"message":"Payload Too Large","code":413}`, string(resp.Body))
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestErrorResponseInvalidStatus(t *testing.T) {
	t.Parallel()

	resp := response.ErrorResponse(response.NewHTTPError(0, "boom"))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"message":"boom","code":500}`, string(resp.Body))
}

func TestFallbackResponse(t *testing.T) {
	t.Parallel()

	resp := response.FallbackResponse()
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"message":"Something Went Wrong","code":500}`, string(resp.Body))
}
