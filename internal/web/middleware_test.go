package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracked(t *testing.T) {
	tests := map[string]bool{
		"/":                     true,
		"/projetos":             true,
		"/projetos/etl":         true,
		"/sobre":                true,
		"/static/style.css":     false,
		"/images/foto.png":      false,
		"/assets/foto-1a2b.png": false,
		"/admin/dashboard":      false,
		"/api/projects":         false,
		"/favicon.ico":          false,
		"/privacidade":          false,
		"/metrics":              false,
		"/healthz":              false,
	}
	for path, want := range tests {
		assert.Equal(t, want, tracked(path), path)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.New(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "abc", first["request_id"])
	assert.Equal(t, "info", first["level"])
	assert.EqualValues(t, 200, first["status"])
	assert.Equal(t, "/ok", first["path"])

	assert.Equal(t, "warn", second["level"])
	assert.EqualValues(t, 404, second["status"])
}
