package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/observability"
)

// outboundEnvelope pairs an event with its recipient set. Recipients
// are resolved by the coordinator inside its critical section, so a
// stale membership view can never leak into delivery.
type outboundEnvelope struct {
	event   event.Outbound
	targets []domain.ConnID
}

// Dispatcher fans outbound events out to connection sinks.
//
// It provides best-effort delivery with no guarantees regarding
// durability or retries: a recipient that disconnected between enqueue
// and delivery is simply skipped. A single worker goroutine drains the
// queue, which is what gives per-room ordering.
//
// Dispatcher is safe for concurrent use by multiple goroutines.
type Dispatcher struct {
	log         *slog.Logger
	monitoring  *observability.MonitoringManager
	sinkTimeout time.Duration

	mu    sync.RWMutex
	sinks map[domain.ConnID]contract.EventSink
	queue chan outboundEnvelope
}

func NewDispatcher(log *slog.Logger, monitoring *observability.MonitoringManager,
	bufferSize int, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:         log,
		monitoring:  monitoring,
		sinkTimeout: sinkTimeout,
		sinks:       make(map[domain.ConnID]contract.EventSink),
		queue:       make(chan outboundEnvelope, bufferSize),
	}
}

// Attach registers a connection's outbound sink.
func (d *Dispatcher) Attach(conn domain.ConnID, sink contract.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks[conn] = sink
}

// Detach forgets a connection. Events already queued for it are skipped
// at delivery time.
func (d *Dispatcher) Detach(conn domain.ConnID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sinks, conn)
}

// Dispatch enqueues an event for the given targets. When the queue is
// full the event is dropped and counted, never blocking the caller.
func (d *Dispatcher) Dispatch(e event.Outbound, targets []domain.ConnID) {
	if len(targets) == 0 {
		return
	}
	select {
	case d.queue <- outboundEnvelope{event: e, targets: targets}:
	default:
		d.monitoring.AddDropped(uint64(len(targets)))
		d.log.Warn("Outbound queue full, dropping event", "event", e.Name())
	}
}

// Run drains the queue until the context is canceled. It is meant to be
// supervised as a worker; exactly one Run loop must be active.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Stopping dispatcher")
			return ctx.Err()
		case env, ok := <-d.queue:
			if !ok {
				return nil
			}
			d.deliver(ctx, env)
		}
	}
}

// deliver pushes one event to every still-attached target, in order.
// A slow or failed sink only loses its own copy.
func (d *Dispatcher) deliver(ctx context.Context, env outboundEnvelope) {
	for _, conn := range env.targets {
		d.mu.RLock()
		sink, ok := d.sinks[conn]
		d.mu.RUnlock()
		if !ok {
			continue
		}

		sinkCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
		err := sink.Consume(sinkCtx, env.event)
		cancel()
		if err != nil {
			d.monitoring.AddDropped(1)
			d.log.Debug("Sink rejected event", "event", env.event.Name(), "err", err)
			continue
		}
		d.monitoring.AddDelivered(1)
	}
}
