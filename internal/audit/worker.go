package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and forwards them to a sink.
// It decouples request paths from slow sinks (Kafka, Postgres): handlers
// enqueue through AsyncPublisher and the worker drains in the background.
type Worker struct {
	sink   Publisher
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is canceled. Sink failures are
// logged and the event dropped: the trail is best-effort and must not wedge
// the pipeline behind one bad event.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil && w.logger != nil {
				w.logger.WarnContext(ctx, "audit sink rejected event",
					"action", event.Action,
					"subject", event.Subject,
					"error", err,
				)
			}
		}
	}
}
