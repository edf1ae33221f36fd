package infra

import (
	"context"
	"errors"
	"fmt"

	"service-pipeline/middleware/admission/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher é o mínimo usado de *amqp.Channel.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPStatsStore publica cada decisão no exchange com routing key
// "<prefix>.<source>.<outcome>".
type AMQPStatsStore struct {
	pub      AMQPPublisher
	exchange string
	prefix   string
}

var _ domain.StatsStore = (*AMQPStatsStore)(nil)

func NewAMQPStatsStore(pub AMQPPublisher, exchange, prefix string) *AMQPStatsStore {
	if prefix == "" {
		prefix = "admission"
	}
	return &AMQPStatsStore{pub: pub, exchange: exchange, prefix: prefix}
}

func (s *AMQPStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	rk := eventSubject(s.prefix, ev)
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID.String(),
		Timestamp:    ev.At,
		Type:         ev.Source,
		Body:         body,
	}
	if err := s.pub.PublishWithContext(ctx, s.exchange, rk, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", rk, err)
	}
	return nil
}

// DialAMQP abre conexão + canal e declara o exchange (topic, durável).
func DialAMQP(url, exchange string) (*amqp.Channel, func(), error) {
	if url == "" {
		return nil, nil, errors.New("amqp url is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	if exchange != "" {
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("amqp exchange declare: %w", err)
		}
	}
	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	return ch, cleanup, nil
}
