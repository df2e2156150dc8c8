package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"concord/pkg/attrs"
	"concord/pkg/requestcontext"
)

// Publisher captures structured audit events. Implementations must tolerate
// being called from request paths: slow sinks should buffer, not block.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// StorePublisher writes events straight to a store. Used in tests and in
// deployments without a Kafka pipeline.
type StorePublisher struct {
	store Store
}

func NewPublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	return p.store.Append(ctx, prepare(ctx, event))
}

// prepare stamps the identity, timestamp, and category every sink expects.
func prepare(ctx context.Context, event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = Action(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return event
}

// Log is the shared helper for audit-worthy actions. It logs to the
// structured logger and emits to the audit publisher if one is configured.
// Event fields are pulled from the key-value attributes, so call sites write
// one attribute list for both sinks:
//
//	audit.Log(ctx, s.logger, s.publisher, string(audit.EventVoteRecorded),
//	    "subject", proposalID.String(), "actor", voter, "decision", "recorded")
func Log(ctx context.Context, logger *slog.Logger, publisher Publisher, action string, attributes ...any) {
	// Add request ID for traceability
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}

	args := append(attributes, "event", action, "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, action, args...)
	}

	if publisher == nil {
		return
	}
	event := Event{
		Action:   action,
		Subject:  attrs.ExtractString(attributes, "subject"),
		Actor:    attrs.ExtractString(attributes, "actor"),
		Decision: attrs.ExtractString(attributes, "decision"),
		Reason:   attrs.ExtractString(attributes, "reason"),
		Client:   attrs.ExtractString(attributes, "client"),
		ClientFP: attrs.ExtractString(attributes, "client_fingerprint"),
		ClientIP: requestcontext.ClientIP(ctx),
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", action, "error", err)
	}
}

// AsyncPublisher enqueues events for a background worker. Emission never
// blocks: when the inbox is full the event is dropped and the drop is
// reported through the returned error so callers can log it.
type AsyncPublisher struct {
	inbox chan<- Event
}

func NewAsyncPublisher(inbox chan<- Event) *AsyncPublisher {
	return &AsyncPublisher{inbox: inbox}
}

func (p *AsyncPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- prepare(ctx, event):
		return nil
	default:
		return ErrInboxFull
	}
}

// ErrInboxFull reports a dropped audit event under backpressure.
var ErrInboxFull = errDropped{}

type errDropped struct{}

func (errDropped) Error() string { return "audit inbox full, event dropped" }
