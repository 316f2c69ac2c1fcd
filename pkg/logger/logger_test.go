package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestInjectedLoggerIsReturned(t *testing.T) {
	var buf bytes.Buffer
	reqLog := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc123")

	ctx := InjectLogger(context.Background(), reqLog)
	WithCtx(ctx).Info("reservation created")

	assert.Contains(t, buf.String(), "request_id=abc123")
	assert.Contains(t, buf.String(), "reservation created")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	slog.New(h).With("order_id", "o1").Info("order served")

	assert.Contains(t, a.String(), "order_id=o1")
	assert.Contains(t, b.String(), `"order_id":"o1"`)
}

func TestSetupWithoutMongoSink(t *testing.T) {
	t.Setenv("LOG_MONGO_URI", "")
	Setup()
	t.Cleanup(Close)

	assert.Nil(t, mongoLog)
	assert.NotNil(t, L)
	assert.Same(t, L, WithCtx(context.Background()))
}
