package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schema for the audit tables. CREATE TABLE IF NOT EXISTS so every instance
// can apply it at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT        NOT NULL,
	ts         TIMESTAMPTZ NOT NULL,
	subject    TEXT        NOT NULL,
	action     TEXT        NOT NULL,
	actor      TEXT        NOT NULL DEFAULT '',
	decision   TEXT        NOT NULL DEFAULT '',
	reason     TEXT        NOT NULL DEFAULT '',
	client     TEXT        NOT NULL DEFAULT '',
	client_fp  TEXT        NOT NULL DEFAULT '',
	client_ip  TEXT        NOT NULL DEFAULT '',
	request_id TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, ts DESC);

CREATE TABLE IF NOT EXISTS audit_outbox (
	id           UUID PRIMARY KEY,
	aggregate_id TEXT        NOT NULL,
	event_type   TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
`

// PostgresStore persists audit events and mirrors each append into an outbox
// row, so a relay can publish to Kafka without dual-write races.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// outboxPayload is the JSON structure relayed to Kafka.
type outboxPayload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Actor     string `json:"actor,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Client    string `json:"client,omitempty"`
	ClientFP  string `json:"client_fingerprint,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Append writes an audit event and its outbox row in one transaction.
// Duplicate IDs are ignored so replays are idempotent.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = Action(event.Action).Category()
	}

	payload := outboxPayload{
		ID:        event.ID.String(),
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Actor:     event.Actor,
		Decision:  event.Decision,
		Reason:    event.Reason,
		Client:    event.Client,
		ClientFP:  event.ClientFP,
		ClientIP:  event.ClientIP,
		RequestID: event.RequestID,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (id, category, ts, subject, action, actor, decision, reason, client, client_fp, client_ip, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.Subject,
		event.Action,
		event.Actor,
		event.Decision,
		event.Reason,
		event.Client,
		event.ClientFP,
		event.ClientIP,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID,
		event.Subject,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	return tx.Commit()
}

// ListBySubject returns events for a subject, oldest first.
func (s *PostgresStore) ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, ts, subject, action, actor, decision, reason, client, client_fp, client_ip, request_id
		FROM (
			SELECT * FROM audit_events WHERE subject = $1 ORDER BY ts DESC LIMIT $2
		) recent
		ORDER BY ts ASC
	`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var category string
		if err := rows.Scan(&e.ID, &category, &e.Timestamp, &e.Subject, &e.Action, &e.Actor, &e.Decision, &e.Reason, &e.Client, &e.ClientFP, &e.ClientIP, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = Category(category)
		events = append(events, e)
	}
	return events, rows.Err()
}

// UnpublishedOutbox returns outbox rows awaiting relay, oldest first.
func (s *PostgresStore) UnpublishedOutbox(ctx context.Context, limit int) ([]OutboxEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		if err := rows.Scan(&entry.ID, &entry.AggregateID, &entry.EventType, &entry.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkPublished stamps outbox rows as relayed.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE audit_outbox SET published_at = NOW() WHERE id = $1`, id); err != nil {
			return fmt.Errorf("mark outbox published: %w", err)
		}
	}
	return nil
}

// OutboxEntry is one pending Kafka relay row.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}
