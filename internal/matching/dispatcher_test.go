package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctuary-network/backend/internal/storage/models"
)

type blockingRunner struct {
	mu      sync.Mutex
	started chan string
	release chan struct{}
	runs    []string
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) GenerateMatches(ctx context.Context, bottleneckID string) ([]models.Match, error) {
	r.mu.Lock()
	r.runs = append(r.runs, bottleneckID)
	r.mu.Unlock()

	r.started <- bottleneckID
	<-r.release
	return nil, nil
}

func TestDispatcher_DeduplicatesWhileQueuedOrRunning(t *testing.T) {
	runner := newBlockingRunner()
	d := NewDispatcher(runner, 8)
	d.Start(1)
	defer d.Stop()

	assert.True(t, d.Enqueue("bn-1"))

	// Wait for the worker to pick it up, then try to enqueue again while
	// the run is active.
	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("worker never started the run")
	}
	assert.False(t, d.Enqueue("bn-1"))

	// A different bottleneck is unaffected by the guard.
	assert.True(t, d.Enqueue("bn-2"))

	close(runner.release)
}

func TestDispatcher_AllowsReenqueueAfterCompletion(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)

	d := NewDispatcher(runner, 8)
	d.Start(1)
	defer d.Stop()

	require.True(t, d.Enqueue("bn-1"))
	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("worker never started the run")
	}

	// The first run has started and will finish immediately; poll until the
	// guard clears and the bottleneck can be enqueued again.
	assert.Eventually(t, func() bool {
		return d.Enqueue("bn-1")
	}, time.Second, 10*time.Millisecond)
}
