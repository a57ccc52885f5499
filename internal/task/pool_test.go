package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool_InvalidCountUsesDefault(t *testing.T) {
	logger := setupTestLogger()

	pool := NewWorkerPool(0, logger)
	defer pool.Stop(false)
	assert.Equal(t, DefaultWorkerCount, pool.workerCount)

	pool2 := NewWorkerPool(-3, logger)
	defer pool2.Stop(false)
	assert.Equal(t, DefaultWorkerCount, pool2.workerCount)
}

func TestWorkerPool_SubmitResolvesResult(t *testing.T) {
	pool := NewWorkerPool(2, setupTestLogger())
	defer pool.Stop(false)

	fut := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return "done", nil
	})

	result, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", result)
}

func TestWorkerPool_SubmitResolvesError(t *testing.T) {
	pool := NewWorkerPool(2, setupTestLogger())
	defer pool.Stop(false)

	wantErr := errors.New("remote call failed")
	fut := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, wantErr
	})

	result, err := fut.Wait(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, result)
}

func TestWorkerPool_PanicRecovered(t *testing.T) {
	pool := NewWorkerPool(1, setupTestLogger())
	defer pool.Stop(false)

	fut := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		panic("boom")
	})

	result, err := fut.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, result)

	// The worker survived the panic and keeps serving.
	fut = pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return "still alive", nil
	})
	result, err = fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still alive", result)
}

func TestWorkerPool_NestedWorkUnwrappedOnce(t *testing.T) {
	pool := NewWorkerPool(1, setupTestLogger())
	defer pool.Stop(false)

	fut := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return func(ctx context.Context) (any, error) {
			return "inner result", nil
		}, nil
	})

	result, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inner result", result)
}

func TestWorkerPool_CancelledContextSkipsWork(t *testing.T) {
	pool := NewWorkerPool(1, setupTestLogger())
	defer pool.Stop(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	fut := pool.Submit(ctx, func(ctx context.Context) (any, error) {
		ran = true
		return nil, nil
	})

	_, err := fut.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestWorkerPool_StopDiscardsQueued(t *testing.T) {
	pool := NewWorkerPool(1, setupTestLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "first", nil
	})
	<-started

	queued := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return "second", nil
	})

	pool.Stop(false)

	_, err := queued.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPoolStopped)

	// In-flight work still resolves normally once it finishes.
	close(release)
	result, err := blocking.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", result)

	// Submissions after stop are rejected.
	rejected := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	})
	_, err = rejected.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestWorkerPool_GracefulStopDrains(t *testing.T) {
	pool := NewWorkerPool(2, setupTestLogger())

	futures := make([]*Future, 0, 8)
	for i := 0; i < 8; i++ {
		futures = append(futures, pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
			time.Sleep(5 * time.Millisecond)
			return "ok", nil
		}))
	}

	pool.Stop(true)

	for _, fut := range futures {
		result, err := fut.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	fut := newFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fut.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// A later resolution still reaches direct waiters.
	fut.resolve("late", nil)
	result, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", result)
}
