package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/artpar/reqtabs/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunServer(t *testing.T) string {
	t.Helper()
	server := newTestServer(t, func(r *gin.Engine) {
		r.GET("/ok", func(c *gin.Context) {
			c.String(http.StatusOK, "fine")
		})
		r.GET("/missing", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})
	})
	return server.URL
}

func tabsFile(t *testing.T, base string) string {
	t.Helper()
	return writeFile(t, "tabs.yaml", `
requests:
  - name: Healthy
    url: `+base+`/ok
  - name: Gone
    url: `+base+`/missing
  - name: Again
    url: `+base+`/ok
`)
}

func executeRun(t *testing.T, v *viper.Viper, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRunCommand(v)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	base := newRunServer(t)

	t.Run("runs every request and reports failures", func(t *testing.T) {
		isolate(t)
		output, err := executeRun(t, nil, tabsFile(t, base))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 requests failed")

		assert.Contains(t, output, "(3 requests)")
		assert.Contains(t, output, "✓ GET Healthy 200 OK")
		assert.Contains(t, output, "✗ GET Gone 404 Not Found")
		assert.Contains(t, output, "✓ GET Again 200 OK")
		assert.Contains(t, output, "Requests: 2/3 passed")
		assert.NotContains(t, output, "Usage:", "a failed run is not a usage error")
	})

	t.Run("bail stops at the first failure", func(t *testing.T) {
		isolate(t)
		output, err := executeRun(t, nil, tabsFile(t, base), "--bail")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 requests failed")
		assert.NotContains(t, output, "Again")
	})

	t.Run("outputs JSON", func(t *testing.T) {
		isolate(t)
		output, err := executeRun(t, nil, tabsFile(t, base), "--json")
		require.Error(t, err)

		var summary RunSummary
		require.NoError(t, json.Unmarshal([]byte(output), &summary))
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.Executed)
		assert.Equal(t, 2, summary.Passed)
		assert.Equal(t, 1, summary.Failed)
		require.Len(t, summary.Results, 3)
		assert.Equal(t, 404, summary.Results[1].Status)
	})

	t.Run("falls back to tabs.file", func(t *testing.T) {
		isolate(t)
		v := config.New()
		v.Set("tabs.file", writeFile(t, "ok.yaml", "requests:\n  - name: Healthy\n    url: "+base+"/ok\n"))

		output, err := executeRun(t, v)
		require.NoError(t, err)
		assert.Contains(t, output, "Requests: 1/1 passed")
	})

	t.Run("transport errors count as failures", func(t *testing.T) {
		isolate(t)
		path := writeFile(t, "bad.yaml", "requests:\n  - name: Nowhere\n    url: ftp://example.com\n")
		output, err := executeRun(t, nil, path)
		require.Error(t, err)
		assert.Contains(t, output, "✗ GET Nowhere:")
	})

	t.Run("needs a tabs file", func(t *testing.T) {
		isolate(t)
		_, err := executeRun(t, nil)
		assert.ErrorIs(t, err, ErrNoTabsFile)
	})
}

func TestRunResult_Passed(t *testing.T) {
	assert.True(t, RunResult{Status: 204}.Passed())
	assert.False(t, RunResult{Status: 500}.Passed())
	assert.False(t, RunResult{Error: "boom"}.Passed())
	assert.False(t, RunResult{}.Passed())
}
