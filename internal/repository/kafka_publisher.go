package repository

import (
	"context"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	pkgkafka "AlgoReport/pkg/kafka"
)

type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaRunPublisher writes one message per symbol outcome, keyed by symbol so a symbol's history stays ordered.
type KafkaRunPublisher struct {
	producer batchProducer
	topic    string
}

var _ domrepo.RunPublisher = (*KafkaRunPublisher)(nil)

func NewKafkaRunPublisher(p *pkgkafka.Producer, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{producer: p, topic: topic}
}

func (k *KafkaRunPublisher) PublishRun(ctx context.Context, recs []models.SignalRecord) error {
	msgs := make([]pkgkafka.Message, len(recs))
	for i, r := range recs {
		msgs[i] = pkgkafka.Message{Key: []byte(r.Symbol), Value: r}
	}
	return k.producer.PublishBatch(ctx, k.topic, msgs)
}

func (k *KafkaRunPublisher) Close() error { return k.producer.Close() }
