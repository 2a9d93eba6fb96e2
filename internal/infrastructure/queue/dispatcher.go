package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/api/metrics"
	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes stock movements to a fixed set of workers using
// consistent hashing on the sweet id, guaranteeing per-item ordering of the
// audit trail.
type Dispatcher struct {
	workers []chan domain.StockMovement
	service ports.MovementService
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.MovementService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StockMovement, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StockMovement, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx bounds the recording calls;
// workers run until Stop closes their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the worker channels and blocks until every already-enqueued
// movement has been recorded, so an in-flight audit trail survives shutdown.
// Enqueue must not be called after Stop.
func (d *Dispatcher) Stop() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// Enqueue sends a movement to the worker responsible for its sweet id.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(m domain.StockMovement) {
	i := d.shardIndex(m.SweetID)
	d.workers[i] <- m
	metrics.MovementQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a sweet id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sweetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sweetID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StockMovement) {
	defer d.wg.Done()
	worker := strconv.Itoa(id)
	for m := range ch {
		start := time.Now()
		if err := d.service.Record(ctx, m); err != nil {
			d.log.Error().Err(err).
				Str("sweet_id", m.SweetID).
				Int("worker_id", id).
				Msg("movement recording failed")
		}
		metrics.MovementProcessingDuration.WithLabelValues(string(m.Kind)).Observe(time.Since(start).Seconds())
		metrics.MovementQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
	}
}
