// Package http_request implements the `http_request` step kind, which calls
// a URL and fails the step when the response status is not the expected one.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/handlers"
)

const Kind = "http_request"

// maxBodyEcho caps how much of the response body is copied to the console.
const maxBodyEcho = 4096

// Input defines the body of an http_request step.
type Input struct {
	URL          string `hcl:"url"`
	Method       string `hcl:"method,optional"`
	Timeout      string `hcl:"timeout,optional"`
	ExpectStatus int    `hcl:"expect_status,optional"`
	PrintBody    bool   `hcl:"print_body,optional"`
}

// OnPerform makes the request with client.
func OnPerform(ctx context.Context, client *http.Client, b *build.Build, input *Input) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	method := input.Method
	if method == "" {
		method = http.MethodGet
	}
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return false, fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, input.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Info("Making HTTP request", "method", method, "url", input.URL)
	resp, err := client.Do(req)
	if err != nil {
		b.Printf("%s %s failed: %v", method, input.URL, err)
		return false, nil
	}
	defer resp.Body.Close()

	b.Printf("%s %s -> %s", method, input.URL, resp.Status)
	if input.PrintBody {
		if _, err := io.Copy(b.Console(), io.LimitReader(resp.Body, maxBodyEcho)); err != nil {
			return false, fmt.Errorf("failed to read response body: %w", err)
		}
		b.Printf("")
	}

	if input.ExpectStatus != 0 {
		return resp.StatusCode == input.ExpectStatus, nil
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// RegisterHandler registers the http_request step kind. Every step shares
// client.
func RegisterHandler(h *handlers.Handlers, client *http.Client) {
	h.RegisterHandler(Kind, &handlers.RegisteredHandler{
		Input: func() any { return new(Input) },
		Fn: func(ctx context.Context, b *build.Build, input any) (bool, error) {
			return OnPerform(ctx, client, b, input.(*Input))
		},
	})
}
