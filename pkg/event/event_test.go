package event_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitetable/elitetable/pkg/event"
	"github.com/elitetable/elitetable/pkg/workerpool"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	bus := event.New(nil)
	var got []string
	bus.Listen("order.created", func(_ context.Context, p any) error { got = append(got, "a:"+p.(string)); return nil })
	bus.Listen("order.created", func(_ context.Context, p any) error { got = append(got, "b:"+p.(string)); return nil })
	bus.Listen("other", func(context.Context, any) error { got = append(got, "x"); return nil })

	require.NoError(t, bus.Fire(context.Background(), "order.created", "o1"))
	assert.Equal(t, []string{"a:o1", "b:o1"}, got)
}

func TestFireJoinsErrorsAndKeepsGoing(t *testing.T) {
	bus := event.New(nil)
	boom := errors.New("boom")
	ran := false
	bus.Listen("e", func(context.Context, any) error { return boom })
	bus.Listen("e", func(context.Context, any) error { ran = true; return nil })

	err := bus.Fire(context.Background(), "e", nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestFireAsyncSurvivesCancelledRequest(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()
	bus := event.New(pool)

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	bus.Listen("e", func(ctx context.Context, _ any) error {
		defer wg.Done()
		ctxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.FireAsync(ctx, "e", nil)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never ran")
	}
	assert.NoError(t, ctxErr)
}

func TestFireAsyncNeverDropsUnderBurst(t *testing.T) {
	pool := workerpool.New(1)
	bus := event.New(pool)

	release := make(chan struct{})
	var n atomic.Int64
	bus.Listen("activity", func(context.Context, any) error {
		<-release
		n.Add(1)
		return nil
	})

	const burst = 50
	var wg sync.WaitGroup
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.FireAsync(context.Background(), "activity", nil)
		}()
	}
	// Let the queue fill behind the blocked worker.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	pool.Shutdown()

	assert.Equal(t, int64(burst), n.Load())
}

func TestFireAsyncAfterShutdownRunsInline(t *testing.T) {
	pool := workerpool.New(1)
	pool.Shutdown()
	bus := event.New(pool)

	ran := false
	bus.Listen("e", func(context.Context, any) error { ran = true; return nil })
	bus.FireAsync(context.Background(), "e", nil)
	assert.True(t, ran)
}
