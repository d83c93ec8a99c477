package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesEnqueuedTasks(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0, 2)
	done := make(chan struct{}, 2)

	pool := NewPool("test", 1, 4, func(_ context.Context, task Task) error {
		mu.Lock()
		seen = append(seen, task.Kind)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, nil)
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Enqueue(Task{Kind: "first"}))
	require.NoError(t, pool.Enqueue(Task{Kind: "second"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task was not processed in time")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"first", "second"}, seen)
}

func TestPoolRejectsBeforeStartAndWhenFull(t *testing.T) {
	block := make(chan struct{})
	pool := NewPool("test", 1, 1, func(_ context.Context, _ Task) error {
		<-block
		return nil
	}, nil)

	require.Error(t, pool.Enqueue(Task{Kind: "early"}))

	pool.Start(context.Background())
	defer func() {
		close(block)
		pool.Stop()
	}()

	// first task occupies the worker, second fills the buffer
	require.NoError(t, pool.Enqueue(Task{Kind: "busy"}))
	require.Eventually(t, func() bool {
		return pool.Enqueue(Task{Kind: "fill"}) == nil
	}, time.Second, 5*time.Millisecond)

	err := pool.Enqueue(Task{Kind: "overflow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
}
