package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadThenDownload(t *testing.T) {
	var stored []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			contentType = r.Header.Get("Content-Type")
			stored, _ = io.ReadAll(r.Body)
		case http.MethodGet:
			_, _ = w.Write(stored)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte(`{"ok":true}`), 0o644))
	b := build.New("app", 1, nil)
	b.Dir = dir

	ok, err := OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "upload", Path: "report.json", URL: srv.URL})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)

	ok, err = OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "DOWNLOAD", Path: "out/copy.json", URL: srv.URL})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := os.ReadFile(filepath.Join(dir, "out", "copy.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(got))
}

func TestOnPerform_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	b := build.New("app", 1, nil)
	b.Dir = dir

	ok, err := OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "upload", Path: "a.txt", URL: srv.URL})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "upload", Path: "missing.txt", URL: srv.URL})
	assert.ErrorContains(t, err, "failed to open source file")

	_, err = OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "sync", Path: "a.txt", URL: srv.URL})
	assert.EqualError(t, err, "unknown s3 action: 'sync'")
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error {
	return errors.New("disk quota exceeded")
}

func TestDownload_ReportsCloseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("artifact"))
	}))
	defer srv.Close()

	target := &failingCloser{}
	orig := createFile
	createFile = func(string) (io.WriteCloser, error) { return target, nil }
	t.Cleanup(func() { createFile = orig })

	b := build.New("app", 1, nil)
	b.Dir = t.TempDir()

	ok, err := OnPerform(context.Background(), http.DefaultClient, b, &Input{Action: "download", Path: "a.bin", URL: srv.URL})
	assert.False(t, ok)
	assert.ErrorContains(t, err, "failed to close")
	assert.ErrorContains(t, err, "disk quota exceeded")
	assert.Equal(t, "artifact", target.String())
}
