// Package logger provides the structured logger built on log/slog.
//
// WithCtx returns the request-scoped logger injected by the Logger
// middleware, so every line from a handler carries the request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("reservation created", "code", res.ConfirmationCode)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/elitetable/elitetable/config"
)

var (
	L *slog.Logger

	mu    sync.Mutex
	mongoLog *MongoHandler
)

func init() {
	L = slog.New(newHandler(os.Stdout))
	slog.SetDefault(L)
}

func newHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup rebuilds the base logger from config. When LOG_MONGO_URI is set,
// records are also shipped to MongoDB. Call Close on shutdown.
func Setup() {
	mu.Lock()
	defer mu.Unlock()

	var h slog.Handler = newHandler(os.Stdout)

	if uri := config.LogMongoURI(); uri != "" && mongoLog == nil {
		mh, err := NewMongoHandler(uri, config.LogMongoDB(), "logs")
		if err != nil {
			slog.New(h).Warn("logger: mongo sink disabled", "error", err)
		} else {
			mongoLog = mh
		}
	}
	if mongoLog != nil {
		h = NewMultiHandler(h, mongoLog)
	}

	L = slog.New(h)
	slog.SetDefault(L)
}

// Close flushes the MongoDB sink, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if mongoLog != nil {
		mongoLog.Close()
		mongoLog = nil
	}
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
