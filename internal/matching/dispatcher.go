package matching

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/logger"
)

// Runner executes one matching run; implemented by Orchestrator.
type Runner interface {
	GenerateMatches(ctx context.Context, bottleneckID string) ([]models.Match, error)
}

// Completion reports the outcome of one background run.
type Completion struct {
	BottleneckID string
	Matches      int
	Err          error
}

// Dispatcher runs matching in the background after a submission. Each
// bottleneck is enqueued at most once until its run finishes; duplicate
// enqueues while a run is queued or active are dropped.
type Dispatcher struct {
	runner Runner

	mu      sync.Mutex
	pending map[string]struct{}

	queue       chan string
	completions chan Completion
	done        chan struct{}
	wg          sync.WaitGroup
}

func NewDispatcher(runner Runner, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 32
	}
	return &Dispatcher{
		runner:      runner,
		pending:     make(map[string]struct{}),
		queue:       make(chan string, buffer),
		completions: make(chan Completion, buffer),
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	// Drain completions so callers that never read them don't block workers.
	go func() {
		for c := range d.completions {
			if c.Err != nil {
				logger.Error("Background matching failed",
					zap.String("bottleneck_id", c.BottleneckID),
					zap.Error(c.Err),
				)
				continue
			}
			logger.Info("Background matching finished",
				zap.String("bottleneck_id", c.BottleneckID),
				zap.Int("matches", c.Matches),
			)
		}
	}()
}

// Enqueue schedules a matching run. Returns false when the bottleneck is
// already queued or running, or the queue is full.
func (d *Dispatcher) Enqueue(bottleneckID string) bool {
	d.mu.Lock()
	if _, exists := d.pending[bottleneckID]; exists {
		d.mu.Unlock()
		return false
	}
	d.pending[bottleneckID] = struct{}{}
	d.mu.Unlock()

	select {
	case d.queue <- bottleneckID:
		return true
	default:
		d.mu.Lock()
		delete(d.pending, bottleneckID)
		d.mu.Unlock()
		logger.Warn("Matching queue full, dropping run", zap.String("bottleneck_id", bottleneckID))
		return false
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case id := <-d.queue:
			matches, err := d.runner.GenerateMatches(context.Background(), id)

			d.mu.Lock()
			delete(d.pending, id)
			d.mu.Unlock()

			d.completions <- Completion{BottleneckID: id, Matches: len(matches), Err: err}
		}
	}
}

// Stop shuts the workers down. Queued runs that have not started are
// abandoned.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
	close(d.completions)
}
