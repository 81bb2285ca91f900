package events

import (
	"context"
	"fmt"

	"refdata-manager/core/reconcile"

	"go.uber.org/zap"
)

// Sink delivers change events to their final destination: a message bus in
// production, a log locally, a slice in tests. The bus itself lives outside
// this service; Sink is the boundary.
type Sink interface {
	Deliver(ctx context.Context, event reconcile.ChangeEvent) error
}

// LogSink writes change events to the application log. It is the default
// sink when no bus transport is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs every event at INFO.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, event reconcile.ChangeEvent) error {
	s.logger.Info("reference data changed",
		zap.String("operation", string(event.Operation)),
		zap.String("kind", string(event.Kind)),
		zap.String("internal_id", event.InternalID),
		zap.String("canonical_type", string(event.CanonicalType)),
		zap.String("canonical_value", event.CanonicalValue),
		zap.String("source", event.Source))
	return nil
}

// Queue is a buffered in-process publisher. Reconcile calls enqueue and
// return; a Worker drains the queue to the sink in the background. A full
// buffer fails the publish so backpressure reaches the caller instead of
// events disappearing.
type Queue struct {
	ch chan reconcile.ChangeEvent
}

// NewQueue creates a queue with the configured buffer capacity.
func NewQueue(cfg Config) *Queue {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 1024
	}
	return &Queue{ch: make(chan reconcile.ChangeEvent, buffer)}
}

// Publish enqueues the event, failing fast when the buffer is full or the
// context is cancelled.
func (q *Queue) Publish(ctx context.Context, event reconcile.ChangeEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("event queue full (%d pending)", cap(q.ch))
	}
}

// Events exposes the queue's receive side for a Worker.
func (q *Queue) Events() <-chan reconcile.ChangeEvent {
	return q.ch
}

// Direct delivers events synchronously to the sink. CLI batch runs use it so
// the process can exit as soon as the batch finishes, with nothing queued.
type Direct struct {
	sink Sink
}

// NewDirect creates a publisher delivering straight to sink.
func NewDirect(sink Sink) *Direct {
	return &Direct{sink: sink}
}

// Publish delivers the event inline.
func (d *Direct) Publish(ctx context.Context, event reconcile.ChangeEvent) error {
	return d.sink.Deliver(ctx, event)
}

// Worker consumes change events from a queue and delivers them to a sink.
// It keeps background publication testable without wiring bus
// implementations.
type Worker struct {
	sink   Sink
	inbox  <-chan reconcile.ChangeEvent
	logger *zap.Logger
}

// NewWorker creates a worker draining inbox into sink.
func NewWorker(sink Sink, inbox <-chan reconcile.ChangeEvent, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run delivers events until the context is cancelled. Delivery failures are
// logged and the worker keeps going; the entity is already durable, and a
// replay of the batch re-emits the event. Events already accepted into the
// queue are drained before Run returns, so a graceful shutdown never drops
// them.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Deliver(ctx, event); err != nil {
				w.logger.Error("event delivery failed",
					zap.String("internal_id", event.InternalID),
					zap.Error(err))
			}
		}
	}
}

// drain delivers whatever is still buffered in the inbox. The run context is
// already cancelled at this point, so delivery uses a fresh context.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			if err := w.sink.Deliver(context.Background(), event); err != nil {
				w.logger.Error("event delivery failed during shutdown",
					zap.String("internal_id", event.InternalID),
					zap.Error(err))
			}
		default:
			return
		}
	}
}
