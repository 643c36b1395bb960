package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJob(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	assert.False(t, s.IsInterfaceNil())

	assert.Error(t, s.AddJob("nil handler", time.Second, nil))
	assert.Error(t, s.AddJob("zero interval", 0, func(ctx context.Context) {}))
	require.NoError(t, s.AddJob("a", time.Second, func(ctx context.Context) {}))
	require.NoError(t, s.AddJob("b", time.Second, func(ctx context.Context) {}))
	assert.Error(t, s.AddJob("a", time.Second, func(ctx context.Context) {}))

	assert.Equal(t, []string{"a", "b"}, s.Jobs())
}

func TestScheduler_FirstRunIsImmediate(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	numCalls := int32(0)
	require.NoError(t, s.AddJob("slow interval", time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&numCalls, 1)
	}))

	s.Start(context.Background())
	defer func() {
		_ = s.Close()
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&numCalls) == 1
	}, time.Second, time.Millisecond*10)
}

func TestScheduler_JobsAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	release := make(chan struct{})
	fastCalls := int32(0)
	require.NoError(t, s.AddJob("blocked", time.Millisecond*10, func(ctx context.Context) {
		<-release
	}))
	require.NoError(t, s.AddJob("fast", time.Millisecond*10, func(ctx context.Context) {
		atomic.AddInt32(&fastCalls, 1)
	}))

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fastCalls) >= 3
	}, time.Second*2, time.Millisecond*10)

	close(release)
	require.NoError(t, s.Close())
}

func TestScheduler_SingleFlight(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	inFlight := int32(0)
	maxInFlight := int32(0)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	require.NoError(t, s.AddJob("job", time.Millisecond*5, func(ctx context.Context) {
		current := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		if current > atomic.LoadInt32(&maxInFlight) {
			atomic.StoreInt32(&maxInFlight, current)
		}

		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}))

	s.Start(context.Background())
	<-started

	err := s.Trigger("job")
	assert.ErrorIs(t, err, ErrJobRunning)

	time.Sleep(time.Millisecond * 50)
	close(release)
	require.NoError(t, s.Close())

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestScheduler_Trigger(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	numCalls := int32(0)
	require.NoError(t, s.AddJob("job", time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&numCalls, 1)
	}))

	t.Run("not started", func(t *testing.T) {
		assert.ErrorIs(t, s.Trigger("job"), ErrNotStarted)
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&numCalls) == 1
	}, time.Second, time.Millisecond*10)

	assert.ErrorIs(t, s.Trigger("missing"), ErrUnknownJob)

	require.Eventually(t, func() bool {
		return s.Trigger("job") == nil
	}, time.Second, time.Millisecond*10)
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&numCalls) == 2
	}, time.Second, time.Millisecond*10)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Trigger("job"), ErrNotStarted)
}

func TestScheduler_PanicsAreRecovered(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	numCalls := int32(0)
	require.NoError(t, s.AddJob("panicky", time.Millisecond*10, func(ctx context.Context) {
		atomic.AddInt32(&numCalls, 1)
		panic("boom")
	}))

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&numCalls) >= 3
	}, time.Second*2, time.Millisecond*10)

	require.NoError(t, s.Close())
}

func TestScheduler_CloseWaitsForRunningHandlers(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	started := make(chan struct{})
	finished := int32(0)
	require.NoError(t, s.AddJob("job", time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(time.Millisecond * 50)
		atomic.StoreInt32(&finished, 1)
	}))

	s.Start(context.Background())
	<-started

	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))

	t.Run("close twice is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Close())
	})
}

func TestScheduler_AddJobAfterClose(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	require.NoError(t, s.AddJob("first", time.Hour, func(ctx context.Context) {}))
	s.Start(context.Background())
	require.NoError(t, s.Close())

	numCalls := int32(0)
	err := s.AddJob("late", time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&numCalls, 1)
	})
	require.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, []string{"first"}, s.Jobs())

	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, int32(0), atomic.LoadInt32(&numCalls))
}
