package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitetable/elitetable/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-blocker
	}))
	<-started

	// Queue depth is twice the worker count.
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)
	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(context.Background(), func() {}), workerpool.ErrPoolClosed)
}

func TestPool_SubmitWaitHonoursContext(t *testing.T) {
	pool := workerpool.New(1)
	blocker := make(chan struct{})
	defer func() { close(blocker); pool.Shutdown() }()

	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() { close(started); <-blocker }))
	<-started
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.SubmitWait(ctx, func() {}), context.DeadlineExceeded)
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitWait(context.Background(), func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestGather(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Shutdown()

	t.Run("all succeed", func(t *testing.T) {
		results := make([]int, 5)
		tasks := make([]workerpool.Task, len(results))
		for i := range tasks {
			i := i
			tasks[i] = func(context.Context) error { results[i] = i * i; return nil }
		}
		require.NoError(t, workerpool.Gather(context.Background(), pool, tasks...))
		assert.Equal(t, []int{0, 1, 4, 9, 16}, results)
	})

	t.Run("first error wins", func(t *testing.T) {
		boom := errors.New("boom")
		err := workerpool.Gather(context.Background(), pool,
			func(context.Context) error { return nil },
			func(context.Context) error { return boom },
		)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		err := workerpool.Gather(context.Background(), pool,
			func(context.Context) error { panic("bad task") },
		)
		assert.ErrorContains(t, err, "bad task")
	})
}
