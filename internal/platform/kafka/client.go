// Package kafka wraps the franz-go client for the audit event pipeline.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"concord/internal/platform/config"
)

// Client wraps a franz-go producer plus the admin client used for topic
// management and health checks.
type Client struct {
	kgo *kgo.Client
	adm *kadm.Client
}

// New creates a Kafka client from the provided configuration.
// Returns nil if no brokers are configured (Kafka not in use).
func New(ctx context.Context, cfg config.Kafka) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	kc, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	client := &Client{kgo: kc, adm: kadm.NewClient(kc)}

	if err := client.kgo.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the topic if it does not exist yet. Already-existing
// topics are not an error so every instance can call this at startup.
func (c *Client) EnsureTopic(ctx context.Context, topic string, partitions int32) error {
	resps, err := c.adm.CreateTopics(ctx, partitions, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Produce synchronously publishes one record. The audit worker batches by
// draining its inbox, so per-record sync produce keeps ordering simple.
func (c *Client) Produce(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := c.kgo.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Health checks broker reachability.
func (c *Client) Health(ctx context.Context) error {
	return c.kgo.Ping(ctx)
}

// Close flushes and releases the underlying client.
func (c *Client) Close() {
	c.kgo.Close()
}
