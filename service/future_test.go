package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedAndFailed(t *testing.T) {
	v, err := Resolved(42).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = Failed[int](boom).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLazy_StartsOnFirstAwaitOnly(t *testing.T) {
	var runs atomic.Int64
	f := Lazy(func() (int, error) {
		runs.Add(1)
		return 1, nil
	})

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int64(0), runs.Load())

	for i := 0; i < 3; i++ {
		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}
	assert.Equal(t, int64(1), runs.Load())
}

func TestSpawn_StartsImmediately(t *testing.T) {
	started := make(chan struct{})
	f := Spawn(func() (string, error) {
		close(started)
		return "ok", nil
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("expected Spawn to start without Await")
	}
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestAwait_ContextLimitsOnlyTheWait(t *testing.T) {
	gate := make(chan struct{})
	f := Spawn(func() (int, error) {
		<-gate
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(gate)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMapAndThen(t *testing.T) {
	var side atomic.Int64
	f := Then(Map(Resolved(2), func(v int, err error) (int, error) {
		return v * 10, err
	}), func(int, error) { side.Add(1) })

	for i := 0; i < 2; i++ {
		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 20, v)
	}
	assert.Equal(t, int64(1), side.Load())
}
