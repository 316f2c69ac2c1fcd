// Package event is an in-process publish/subscribe bus.
//
// Services publish domain events after a write commits; listeners record
// activity, create notifications and push them to connected clients.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any) error

// Bus routes named events to listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// New returns a Bus. A nil pool makes FireAsync run listeners inline.
func New(pool *workerpool.Pool) *Bus {
	return &Bus{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers h for name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Fire runs every listener for name in registration order and joins their
// errors. A failing listener does not stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) error {
	var errs []error
	for _, h := range b.listeners(name) {
		if err := h(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FireAsync hands the listeners to the pool and returns once they are
// queued. A full queue makes the caller wait rather than lose the event; a
// closed pool runs the listeners inline. Errors are logged. The request
// context is detached so listeners outlive the request.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	run := func() {
		if err := b.Fire(detached, name, payload); err != nil {
			logger.WithCtx(detached).Warn("event: listener failed", "event", name, "error", err)
		}
	}
	if b.pool == nil {
		run()
		return
	}
	if err := b.pool.SubmitWait(detached, run); err != nil {
		run()
	}
}
