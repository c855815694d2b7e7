package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/id-service/internal/generator"
	"github.com/atdaga/skrm-server/pkg/jwt"
	"github.com/atdaga/skrm-server/pkg/middleware"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

const org = "00000010-0000-0000-0001-000000000010"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var tokens = func() *jwt.Manager {
	m, err := jwt.NewManager("id-handler-test-secret", "skrm", time.Minute)
	if err != nil {
		panic(err)
	}
	return m
}()

func newRouter(alloc scopedid.Allocator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(generator.NewRegistry(alloc), middleware.NewAuthMiddleware(tokens)).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (int, envelope) {
	t.Helper()
	token, _, err := tokens.IssueAccessToken("svc-tracker", "tracker-service", nil)
	require.NoError(t, err)
	return doWithToken(t, r, method, path, token, body)
}

func doWithToken(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestRoutesRequireToken(t *testing.T) {
	alloc := scopedid.NewMemoryAllocator()
	r := newRouter(alloc)

	code, env := doWithToken(t, r, http.MethodPost, "/api/v1/ids/task", "", GenerateRequest{Namespace: org})
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Zero(t, alloc.Current(uuid.MustParse(org), scopedid.KindTask), "no number consumed")

	code, _ = doWithToken(t, r, http.MethodGet, "/api/v1/ids/types", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGenerateScoped(t *testing.T) {
	r := newRouter(scopedid.NewMemoryAllocator())

	code, env := do(t, r, http.MethodPost, "/api/v1/ids/task", GenerateRequest{Namespace: org, Count: 2})
	require.Equal(t, http.StatusOK, code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "task", resp.Type)
	assert.Equal(t, []string{
		"00000010-0000-0000-0001-000000000001",
		"00000010-0000-0000-0001-000000000002",
	}, resp.IDs)

	code, env = do(t, r, http.MethodPost, "/api/v1/ids/task", GenerateRequest{Namespace: org})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, []string{"00000010-0000-0000-0001-000000000003"}, resp.IDs)
}

func TestGenerateErrors(t *testing.T) {
	alloc := scopedid.NewMemoryAllocator()
	r := newRouter(alloc)

	code, _ := do(t, r, http.MethodPost, "/api/v1/ids/snowflake", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/task", nil)
	assert.Equal(t, http.StatusBadRequest, code, "namespace required")

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/feature", GenerateRequest{Namespace: "acme"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/uuid", GenerateRequest{Count: 5000})
	assert.Equal(t, http.StatusBadRequest, code)

	alloc.Seed(uuid.MustParse(org), scopedid.KindFeature, scopedid.MaxSequence)
	code, env := do(t, r, http.MethodPost, "/api/v1/ids/feature", GenerateRequest{Namespace: org})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NAMESPACE_EXHAUSTED", env.Error.Code)
}

func seq(n int64) *int64 { return &n }

func TestEncode(t *testing.T) {
	r := newRouter(scopedid.NewMemoryAllocator())

	code, env := do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: org, Kind: "task", Sequence: seq(123456789012)})
	require.Equal(t, http.StatusOK, code)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "00000010-0000-0000-0001-123456789012", out.ID)

	code, env = do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: "AAAAAAAA-0000-0000-0001-000000000010", Kind: "feature", Sequence: seq(7)})
	require.Equal(t, http.StatusOK, code, "uppercase organization ids are accepted")
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "aaaaaaaa-0000-0000-0001-000000000007", out.ID)

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: org, Kind: "sprint", Sequence: seq(1)})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: "acme", Kind: "task", Sequence: seq(1)})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: org, Kind: "task"})
	assert.Equal(t, http.StatusBadRequest, code, "sequence is required")
}

func TestEncode_OutOfRange(t *testing.T) {
	r := newRouter(scopedid.NewMemoryAllocator())

	for _, n := range []int64{0, -1, scopedid.MaxSequence + 1} {
		code, env := do(t, r, http.MethodPost, "/api/v1/ids/encode", EncodeRequest{Namespace: org, Kind: "task", Sequence: seq(n)})
		assert.Equal(t, http.StatusUnprocessableEntity, code, "sequence %d", n)
		require.NotNil(t, env.Error, "sequence %d", n)
		assert.Equal(t, "INVALID_SEQUENCE", env.Error.Code)
		assert.Contains(t, env.Error.Message, "999999999999")
	}
}

func TestValidateAndParse(t *testing.T) {
	r := newRouter(scopedid.NewMemoryAllocator())

	code, env := do(t, r, http.MethodGet, "/api/v1/ids/task/00000010-0000-0000-0001-000000000123/validate", nil)
	require.Equal(t, http.StatusOK, code)
	var v ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.Valid)

	_, env = do(t, r, http.MethodGet, "/api/v1/ids/task/00000010-0000-0000-0001-00000000abcd/validate", nil)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Reason)

	code, env = do(t, r, http.MethodGet, "/api/v1/ids/feature/00000010-0000-0000-0001-000000000042/parse", nil)
	require.Equal(t, http.StatusOK, code)
	var p generator.ParseResult
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "00000010-0000-0000-0001", p.Namespace)
	assert.Equal(t, "feature", p.Kind)
	assert.Equal(t, int64(42), p.Sequence)

	code, env = do(t, r, http.MethodGet, "/api/v1/ids/uuid7/not-a-uuid/parse", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	code, env = do(t, r, http.MethodGet, "/api/v1/ids/types", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"types":["feature","task","uuid","uuid7"]}`, string(env.Data))
}
