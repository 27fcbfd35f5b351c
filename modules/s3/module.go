// Package s3 implements the `s3` step kind, which moves build artifacts to and
// from object storage through pre-signed URLs.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

const Kind = "s3"

// Input defines the body of an s3 step.
type Input struct {
	Action string `hcl:"action"`
	Path   string `hcl:"path"`
	URL    string `hcl:"url"`
}

func resolvePath(b *build.Build, path string) string {
	if filepath.IsAbs(path) || b.Dir == "" {
		return path
	}
	return filepath.Join(b.Dir, path)
}

// handleUpload PUTs the file at input.Path to the pre-signed URL.
func handleUpload(ctx context.Context, client *http.Client, b *build.Build, input *Input) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")
	path := resolvePath(b, input.Path)

	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open source file '%s': %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to get file stats for '%s': %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.URL, file)
	if err != nil {
		return false, fmt.Errorf("failed to create S3 upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file to S3", "source", path, "size", stat.Size(), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.Printf("S3 upload of %s failed with status: %s", input.Path, resp.Status)
		return false, nil
	}
	b.Printf("Uploaded %s (%d bytes)", input.Path, stat.Size())
	return true, nil
}

// handleDownload GETs the pre-signed URL into input.Path.
func handleDownload(ctx context.Context, client *http.Client, b *build.Build, input *Input) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("action", "download")
	path := resolvePath(b, input.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create S3 download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute S3 download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.Printf("S3 download to %s failed with status: %s", input.Path, resp.Status)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	n, err := writeFile(path, resp.Body)
	if err != nil {
		return false, err
	}
	logger.Info("Downloaded file from S3", "target", path, "size", n)
	b.Printf("Downloaded %s (%d bytes)", input.Path, n)
	return true, nil
}

// createFile opens download targets. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeFile copies r into a new file at path. The file is closed before
// returning so that a failed flush is reported.
func writeFile(path string, r io.Reader) (int64, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create target file '%s': %w", path, err)
	}

	n, err := io.Copy(file, r)
	if err != nil {
		_ = file.Close()
		return n, fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("failed to close '%s': %w", path, err)
	}
	return n, nil
}

// OnPerform dispatches on the step's action.
func OnPerform(ctx context.Context, client *http.Client, b *build.Build, input *Input) (bool, error) {
	switch strings.ToLower(input.Action) {
	case "upload":
		return handleUpload(ctx, client, b, input)
	case "download":
		return handleDownload(ctx, client, b, input)
	default:
		return false, fmt.Errorf("unknown s3 action: '%s'", input.Action)
	}
}

// RegisterHandler registers the s3 step kind.
func RegisterHandler(h *handlers.Handlers, client *http.Client) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		Input: func() any { return new(Input) },
		Fn: func(ctx context.Context, b *build.Build, input any) (bool, error) {
			return OnPerform(ctx, client, b, input.(*Input))
		},
	})
}
