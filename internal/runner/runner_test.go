package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	got  *core.Request
	resp *core.Response
	err  error
}

func (f *fakeRequester) Send(ctx context.Context, req *core.Request) (*core.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestRunner_Execute(t *testing.T) {
	t.Run("interpolates from environment", func(t *testing.T) {
		fake := &fakeRequester{resp: core.NewResponse("x", core.NewStatus(200, "200 OK"))}
		r := New(WithRequester(fake), WithLogger(logging.NewNopLogger()))

		env := core.NewEnvironment("dev")
		env.SetVariable("base", "http://localhost:8080")
		env.SetSecret("token", "s3cret")

		rec := core.NewRecord("Me", "GET", "{{base}}/me")
		rec.SetHeader("Authorization", "Bearer {{token}}")

		resp, err := r.Execute(context.Background(), rec, env)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status().Code())
		assert.Equal(t, "http://localhost:8080/me", fake.got.Endpoint())
		assert.Equal(t, "Bearer s3cret", fake.got.Headers().Get("Authorization"))
		assert.Equal(t, rec.ID(), fake.got.RecordID())
	})

	t.Run("logs secret names but not values", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		fake := &fakeRequester{resp: core.NewResponse("x", core.NewStatus(200, "200 OK"))}
		r := New(WithRequester(fake), WithLogger(logger))

		env := core.NewEnvironment("dev")
		env.SetVariable("base", "http://localhost:8080")
		env.SetSecret("token", "s3cret")
		rec := core.NewRecord("Me", "GET", "{{base}}/me")
		rec.SetHeader("Authorization", "Bearer {{token}}")

		_, err := r.Execute(context.Background(), rec, env)
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, `"secrets":["token"]`)
		assert.Contains(t, out, `"env":"dev"`)
		assert.Contains(t, out, `"record":"`+rec.ID()+`"`)
		assert.NotContains(t, out, "s3cret")
	})

	t.Run("rejects invalid URL before sending", func(t *testing.T) {
		fake := &fakeRequester{}
		r := New(WithRequester(fake), WithLogger(logging.NewNopLogger()))

		_, err := r.Execute(context.Background(), core.NewRecord("A", "GET", ""), nil)
		assert.ErrorIs(t, err, core.ErrEmptyURL)
		assert.Nil(t, fake.got)
	})

	t.Run("wraps transport errors", func(t *testing.T) {
		boom := errors.New("boom")
		r := New(WithRequester(&fakeRequester{err: boom}), WithLogger(logging.NewNopLogger()))

		_, err := r.Execute(context.Background(), core.NewRecord("A", "GET", "http://x"), nil)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "request failed")
	})

	t.Run("sends through default HTTP client", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		engine := gin.New()
		engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		server := httptest.NewServer(engine)
		defer server.Close()

		r := New(WithTimeout(5*time.Second), WithLogger(logging.NewNopLogger()))
		resp, err := r.Execute(context.Background(), core.NewRecord("Ping", "GET", server.URL+"/ping"), nil)
		require.NoError(t, err)
		assert.Equal(t, "pong", resp.Body().String())
	})
}
