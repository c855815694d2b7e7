package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware_RequestIDAndActor(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", ServiceName: "tracker-service", Out: &buf})

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/orgs/:org_id", func(c *gin.Context) {
		c.Set(FieldUserID, "user-1")
		l := Ctx(c.Request.Context())
		l.Debug().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/org-9", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	assert.Equal(t, "req-123", inner[FieldRequestID])
	assert.Equal(t, "tracker-service", inner[FieldService])

	var done map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &done))
	assert.Equal(t, "request completed", done["message"])
	assert.Equal(t, "user-1", done[FieldUserID])
	assert.Equal(t, "org-9", done[FieldOrgID])
	assert.Equal(t, "/orgs/:org_id", done[FieldRoute])
	assert.Equal(t, float64(http.StatusNoContent), done[FieldStatus])
}

func TestGinMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Out: &buf})))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	var done map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &done))
	assert.Equal(t, "warn", done["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel(" DEBUG ").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
}
