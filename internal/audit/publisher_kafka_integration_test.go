//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"concord/internal/audit"
	"concord/internal/platform/config"
	"concord/internal/platform/kafka"
	"concord/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	brokers []string
	client  *kafka.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	ctx := context.Background()
	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers

	client, err := kafka.New(ctx, config.Kafka{Brokers: s.brokers})
	s.Require().NoError(err)
	s.Require().NotNil(client)
	s.client = client
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

// newPublisher creates a publisher on a fresh topic. The broker is shared
// across suites and runs, so per-test topics keep consumed records disjoint.
func (s *KafkaPublisherSuite) newPublisher(ctx context.Context) (*audit.KafkaPublisher, string) {
	topic := fmt.Sprintf("audit.events.%s", uuid.NewString())
	publisher, err := audit.NewKafkaPublisher(ctx, s.client, topic)
	s.Require().NoError(err)
	return publisher, topic
}

type consumedEnvelope struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason"`
}

// consume reads records from the topic until count arrive or the deadline
// fails the suite.
func (s *KafkaPublisherSuite) consume(topic string, count int) []*kgo.Record {
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var records []*kgo.Record
	for len(records) < count {
		fetches := consumer.PollFetches(ctx)
		s.Require().Empty(fetches.Errors(), "fetch errors while consuming audit topic")

		iter := fetches.RecordIter()
		for !iter.Done() {
			records = append(records, iter.Next())
		}
	}
	return records
}

func (s *KafkaPublisherSuite) TestEmitKeysRecordsBySubject() {
	ctx := context.Background()
	publisher, topic := s.newPublisher(ctx)

	events := []audit.Event{
		{Subject: "prop-kafka-1", Action: string(audit.EventProposalSubmitted), Actor: "alice@eu-west", Decision: "accepted"},
		{Subject: "prop-kafka-1", Action: string(audit.EventVoteRecorded), Actor: "bob@eu-north", Decision: "support"},
		{Subject: "reg-kafka-1", Action: string(audit.EventRegistrySyncFinished), Actor: "system", Reason: "consensus 100%"},
	}
	for _, event := range events {
		s.Require().NoError(publisher.Emit(ctx, event))
	}

	records := s.consume(topic, len(events))
	s.Require().Len(records, len(events))

	bySubject := make(map[string][]consumedEnvelope)
	for _, record := range records {
		var envelope consumedEnvelope
		s.Require().NoError(json.Unmarshal(record.Value, &envelope))
		s.Equal(envelope.Subject, string(record.Key), "records are keyed by subject")
		bySubject[envelope.Subject] = append(bySubject[envelope.Subject], envelope)
	}

	proposalTrail := bySubject["prop-kafka-1"]
	s.Require().Len(proposalTrail, 2)
	// Same key, same partition: the trail preserves emit order.
	s.Equal(string(audit.EventProposalSubmitted), proposalTrail[0].Action)
	s.Equal(string(audit.EventVoteRecorded), proposalTrail[1].Action)
	s.Equal("alice@eu-west", proposalTrail[0].Actor)

	registryTrail := bySubject["reg-kafka-1"]
	s.Require().Len(registryTrail, 1)
	s.Equal("consensus 100%", registryTrail[0].Reason)
}

func (s *KafkaPublisherSuite) TestEmitStampsEnvelopeIdentity() {
	ctx := context.Background()
	publisher, topic := s.newPublisher(ctx)

	err := publisher.Emit(ctx, audit.Event{
		Subject:  "prop-kafka-stamp",
		Action:   string(audit.EventProposalSubmitted),
		Decision: "accepted",
	})
	s.Require().NoError(err)

	records := s.consume(topic, 1)
	s.Require().Len(records, 1)

	var stamped consumedEnvelope
	s.Require().NoError(json.Unmarshal(records[0].Value, &stamped))
	s.Equal("prop-kafka-stamp", stamped.Subject)

	parsedID, err := uuid.Parse(stamped.ID)
	s.NoError(err)
	s.NotEqual(uuid.Nil, parsedID)
	s.Equal(string(audit.CategoryGovernance), stamped.Category)

	emittedAt, err := time.Parse(time.RFC3339Nano, stamped.Timestamp)
	s.NoError(err)
	s.WithinDuration(time.Now(), emittedAt, time.Minute)
}
