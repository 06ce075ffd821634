package Asset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureLoadsOnce(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	f := Go(context.Background(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "font", nil
	})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := f.Await(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "font", r)
	}
}

func TestFutureError(t *testing.T) {
	boom := errors.New("boom")
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = Failed[int](boom).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFutureAwaitCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolved(t *testing.T) {
	f := Resolved(42)
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future not done")
	}
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
