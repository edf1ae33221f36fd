package infra

import (
	"context"
	"errors"
	"fmt"

	"service-pipeline/middleware/admission/domain"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaProducer é o mínimo usado de *kgo.Client.
type KafkaProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaStatsStore produz cada decisão no tópico configurado, com a chave do
// cliente como record key (mesma partição por cliente).
type KafkaStatsStore struct {
	producer KafkaProducer
	topic    string
}

var _ domain.StatsStore = (*KafkaStatsStore)(nil)

func NewKafkaStatsStore(p KafkaProducer, topic string) *KafkaStatsStore {
	if topic == "" {
		topic = "admission.events"
	}
	return &KafkaStatsStore{producer: p, topic: topic}
}

func (s *KafkaStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(ev.Key),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "source", Value: []byte(ev.Source)},
			{Key: "outcome", Value: []byte(ev.Outcome())},
		},
	}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("kafka produce to %q: %w", s.topic, err)
	}
	return nil
}

type KafkaConfig struct {
	Brokers  []string
	ClientID string
}

// NewKafkaClient cria o client franz-go e o cleanup.
func NewKafkaClient(cfg KafkaConfig) (*kgo.Client, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, errors.New("kafka brokers are required")
	}
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka client init: %w", err)
	}
	return cl, cl.Close, nil
}
