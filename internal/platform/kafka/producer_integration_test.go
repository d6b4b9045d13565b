//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"productverification/internal/platform/config"
	"productverification/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	broker string
}

func TestProducerSuite(t *testing.T) {
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
}

func (s *ProducerSuite) TestNoBrokersMeansNoProducer() {
	p, err := NewProducer(config.KafkaConfig{})
	s.Require().NoError(err)
	s.Nil(p)
}

func (s *ProducerSuite) TestPublishIsReadableFromTopic() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "product-events-publish"
	p, err := NewProducer(config.KafkaConfig{Brokers: []string{s.broker}, Topic: topic})
	s.Require().NoError(err)
	defer p.Close()

	s.Require().NoError(p.Health(ctx))
	s.Require().NoError(p.EnsureTopic(ctx, topic, 1, 1))
	s.Require().NoError(p.EnsureTopic(ctx, topic, 1, 1), "existing topic is not an error")

	s.Require().NoError(p.Publish(ctx, topic, []byte("product-1"), []byte(`{"event_type":"x"}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(s.T(), fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("product-1", string(records[0].Key))
	s.JSONEq(`{"event_type":"x"}`, string(records[0].Value))
}
