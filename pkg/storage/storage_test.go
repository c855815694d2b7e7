package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s Storage, key string) string {
	t.Helper()
	rc, err := s.Read(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	key := "orgs/o1/features/f1/doc.md"
	require.NoError(t, s.Write(ctx, key, strings.NewReader("# Title"), -1, "text/markdown"))
	assert.Equal(t, "# Title", readAll(t, s, key))

	require.NoError(t, s.Write(ctx, key, strings.NewReader("v2"), 2, "text/markdown"))
	assert.Equal(t, "v2", readAll(t, s, key))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting a missing key is not an error")

	_, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "orgs/o1/features/f1/doc.md", strings.NewReader("a"), -1, ""))
	require.NoError(t, s.Write(ctx, "orgs/o1/features/f2/doc.md", strings.NewReader("b"), -1, ""))

	require.NoError(t, s.DeletePrefix(ctx, "orgs/o1/features/f1/"))

	ok, err := s.Exists(ctx, "orgs/o1/features/f1/doc.md")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Exists(ctx, "orgs/o1/features/f2/doc.md")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.DeletePrefix(ctx, "orgs/missing/"))
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	assert.Error(t, s.DeletePrefix(ctx, ".."))
	assert.Error(t, s.DeletePrefix(ctx, "/"))

	require.NoError(t, s.Write(ctx, "../../escape.md", strings.NewReader("x"), -1, ""))
	assert.Equal(t, "x", readAll(t, s, "escape.md"))
}

// fakeS3 serves path-style PUT/GET/DELETE for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/docs/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s, err := New(ctx, Config{Driver: DriverS3, S3: S3Config{
		Endpoint:        srv.URL,
		Bucket:          "docs",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
		KeyPrefix:       "/tracker/",
	}})
	require.NoError(t, err)

	key := "orgs/o1/features/f1/doc.md"
	require.NoError(t, s.Write(ctx, key, strings.NewReader("# S3"), 4, "text/markdown"))
	assert.Equal(t, "# S3", string(fake.objects["tracker/"+key]))
	assert.Equal(t, "# S3", readAll(t, s, key))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, fake.objects)
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(context.Background(), Config{Local: LocalConfig{BasePath: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), Config{Driver: "gcs"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Driver: DriverS3})
	assert.Error(t, err, "bucket is required")
}
