package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	ctx, logger := With(ctx, "build", "app#1")
	logger.Info("hello")
	FromContext(ctx).Info("again")

	out := buf.String()
	assert.Contains(t, out, "msg=hello build=app#1")
	assert.Contains(t, out, "msg=again build=app#1")
}

func TestFromContext_NilLoggerFallsBackToDefault(t *testing.T) {
	ctx := WithLogger(context.Background(), nil)
	require.Same(t, slog.Default(), FromContext(ctx))
}
