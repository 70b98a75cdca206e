package adapter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "order:pay:1", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, release(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Empty(t, l.slots)
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 重复释放无副作用
	require.NoError(t, release(context.Background()))
	require.NoError(t, release(context.Background()))

	release2, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.NoError(t, release2(context.Background()))
}

func TestLocalLocker_KeysAreIndependent(t *testing.T) {
	l := NewLocalLocker()
	r1, err := l.Acquire(context.Background(), "a", time.Second)
	require.NoError(t, err)
	r2, err := l.Acquire(context.Background(), "b", time.Second)
	require.NoError(t, err)
	require.NoError(t, r1(context.Background()))
	require.NoError(t, r2(context.Background()))
}
