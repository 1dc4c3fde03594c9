package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes task audit events to a fixed set of workers using
// consistent hashing on the task ID, so events for one task are recorded in
// the order they were published.
type Dispatcher struct {
	workers []chan domain.TaskEvent
	service ports.AuditService
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. m may be nil.
func NewDispatcher(numWorkers int, service ports.AuditService, m *metrics.Metrics, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TaskEvent, numWorkers),
		service: service,
		metrics: m,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TaskEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Stop closes their
// channels and the backlog is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Publish hands event to the worker responsible for its task. It never
// blocks: when the worker's buffer is full, or the dispatcher is stopped,
// the event is dropped and logged.
func (d *Dispatcher) Publish(event domain.TaskEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(event, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(event.TaskID)
	select {
	case d.workers[idx] <- event:
		d.metrics.SetQueueDepth(idx, len(d.workers[idx]))
	default:
		d.drop(event, "worker queue full")
	}
}

// Stop refuses new events, waits for workers to record what is already
// queued, and returns early with ctx's error if ctx ends first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a task ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.TaskEvent, reason string) {
	d.metrics.AuditEvent("dropped")
	d.log.Warn().
		Str("task_id", event.TaskID).
		Str("action", string(event.Action)).
		Str("reason", reason).
		Msg("audit event dropped")
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.TaskEvent) {
	defer d.wg.Done()

	for event := range ch {
		d.metrics.SetQueueDepth(id, len(ch))

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := d.service.Record(ctx, event)
		cancel()

		if err != nil {
			d.metrics.AuditEvent("failed")
			d.log.Error().Err(err).
				Str("task_id", event.TaskID).
				Str("action", string(event.Action)).
				Int("worker_id", id).
				Msg("audit event recording failed")
			continue
		}
		d.metrics.AuditEvent("recorded")
	}
}
