package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/api/metrics"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes chat activity events to a fixed set of workers using
// consistent hashing on the chat ID, guaranteeing per-chat event ordering.
type Dispatcher struct {
	workers []chan ports.ChatActivityEvent
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
		workers: make([]chan ports.ChatActivityEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ChatActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its chat.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.ChatActivityEvent) {
	idx := d.shardIndex(event.ChatID)
	d.workers[idx] <- event
	metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a chat ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(chatID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chatID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ChatActivityEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}

			start := time.Now()
			result := "ok"
			if err := d.service.Process(ctx, event); err != nil {
				result = "error"
				d.log.Error().Err(err).
					Str("chat_id", event.ChatID).
					Int("worker_id", id).
					Msg("activity event processing failed")
			}
			metrics.ActivityProcessingDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
			metrics.ActivityQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}
