package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes activity events to a fixed set of workers using
// consistent hashing on the resource id, preserving per-resource ordering.
type Dispatcher struct {
	workers []chan domain.ActivityEvent
	service ports.ActivityService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActivityEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its resource. It
// never blocks the request path: when that worker's buffer is full the
// event is dropped and counted.
func (d *Dispatcher) Enqueue(event domain.ActivityEvent) {
	idx := d.shardIndex(event.ResourceID)
	select {
	case d.workers[idx] <- event:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("resource_id", event.ResourceID).
			Str("action", string(event.Action)).
			Int("worker_id", idx).
			Msg("activity queue full, event dropped")
	}
}

// shardIndex maps a resource id deterministically to a worker index.
func (d *Dispatcher) shardIndex(resourceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resourceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			err := d.service.Record(ctx, event)
			metrics.ActivityRecordDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ActivityEventsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("resource_id", event.ResourceID).
					Int("worker_id", id).
					Msg("activity recording failed")
				continue
			}
			metrics.ActivityEventsTotal.WithLabelValues("recorded").Inc()
		}
	}
}
