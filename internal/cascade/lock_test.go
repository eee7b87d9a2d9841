package cascade

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/pkg/types"
)

func TestKeyedLockExcludesSameKey(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	var inside, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, pointKey("BH-01"), projectKey("W51-01"))
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())

	l.mu.Lock()
	assert.Empty(t, l.slots)
	l.mu.Unlock()
}

func TestKeyedLockDisjointKeys(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	release, err := l.Acquire(ctx, pointKey("BH-01"))
	require.NoError(t, err)
	defer release()

	done := make(chan struct{})
	go func() {
		other, err := l.Acquire(ctx, pointKey("BH-02"))
		if err == nil {
			other()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint key blocked")
	}
}

func TestKeyedLockDuplicateKeys(t *testing.T) {
	l := NewKeyedLock()
	release, err := l.Acquire(context.Background(), "a", "b", "a")
	require.NoError(t, err)
	release()
}

func TestKeyedLockContextCancel(t *testing.T) {
	l := NewKeyedLock()
	release, err := l.Acquire(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	again, err := l.Acquire(context.Background(), "a", "b")
	require.NoError(t, err)
	again()
}

func TestConcurrentSamplesStayDense(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			depth := float64(i)
			_, err := e.CreateSample(ctx, types.Sample{PointID: "BH-01", Depth: depth, Bottom: depth + 0.45, Type: "SPT"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	samples, err := e.ListSamples(ctx, "BH-01")
	require.NoError(t, err)
	numbers := map[int]bool{}
	for _, s := range samples {
		numbers[s.Number] = true
	}
	assert.Len(t, numbers, 6)
	for n := 1; n <= 6; n++ {
		assert.True(t, numbers[n], "number %d", n)
	}
}
