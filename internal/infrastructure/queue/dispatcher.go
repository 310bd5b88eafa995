package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/ports"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Enqueue after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher routes usage events to a fixed set of workers using consistent
// hashing on the tenant id, so one tenant's events are applied in order.
type Dispatcher struct {
	workers []chan ports.UsageEventInput
	service ports.UsageService
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.UsageService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.UsageEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.UsageEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or, after Stop, once their channel is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes every worker channel and waits for queued events to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue sends an event to the worker responsible for its tenant.
// The call blocks once that worker's buffer is full.
func (d *Dispatcher) Enqueue(event ports.UsageEventInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	idx := d.shardIndex(event.TenantID)
	d.workers[idx] <- event
	metrics.UsageQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// EnqueueBatch enqueues multiple events preserving per-tenant ordering.
func (d *Dispatcher) EnqueueBatch(events []ports.UsageEventInput) error {
	for _, e := range events {
		if err := d.Enqueue(e); err != nil {
			return err
		}
	}
	return nil
}

// shardIndex maps a tenant id deterministically to a worker index.
func (d *Dispatcher) shardIndex(tenantID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.UsageEventInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.UsageQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("event_id", event.EventID).
					Str("tenant_id", event.TenantID).
					Int("worker_id", id).
					Msg("usage event processing failed")
			}
		}
	}
}
