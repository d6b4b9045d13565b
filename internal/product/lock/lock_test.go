package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productverification/pkg/platform/sentinel"
)

func TestShardedSerializesSameKey(t *testing.T) {
	l := NewSharded()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "product-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestShardedGivesUpWhenContextDone(t *testing.T) {
	l := NewSharded()
	release, err := l.Lock(context.Background(), "product-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "product-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShardedReleaseAllowsReacquire(t *testing.T) {
	l := NewSharded()
	release, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	release()

	release, err = l.Lock(context.Background(), "k")
	require.NoError(t, err)
	release()
}
