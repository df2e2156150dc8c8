package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"concord/internal/platform/kafka"
)

// KafkaPublisher emits audit events to the audit topic. Records are keyed by
// subject so a consumer sees each proposal's or registry's trail in order.
type KafkaPublisher struct {
	client *kafka.Client
	topic  string
}

// NewKafkaPublisher ensures the topic exists and returns the publisher.
func NewKafkaPublisher(ctx context.Context, client *kafka.Client, topic string) (*KafkaPublisher, error) {
	if err := client.EnsureTopic(ctx, topic, 3); err != nil {
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

type kafkaEnvelope struct {
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

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	event = prepare(ctx, event)

	payload, err := json.Marshal(kafkaEnvelope{
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
	})
	if err != nil {
		return fmt.Errorf("marshal audit envelope: %w", err)
	}

	return p.client.Produce(ctx, p.topic, []byte(event.Subject), payload)
}
