package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"service-pipeline/middleware/admission/domain"

	"github.com/nats-io/nats.go"
)

// NATSPublisher é o mínimo usado de *nats.Conn.
type NATSPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSStatsStore publica cada decisão em "<prefix>.<source>.<outcome>".
type NATSStatsStore struct {
	pub    NATSPublisher
	prefix string
}

var _ domain.StatsStore = (*NATSStatsStore)(nil)

func NewNATSStatsStore(pub NATSPublisher, prefix string) *NATSStatsStore {
	if prefix == "" {
		prefix = "admission"
	}
	return &NATSStatsStore{pub: pub, prefix: prefix}
}

func (s *NATSStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	msg := &nats.Msg{Subject: eventSubject(s.prefix, ev), Data: body, Header: nats.Header{}}
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set(nats.MsgIdHdr, ev.ID.String())

	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", msg.Subject, err)
	}
	return nil
}

type NATSConfig struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	MaxReconnects int
}

// ConnectNATS abre uma conexão real e devolve também o cleanup.
func ConnectNATS(cfg NATSConfig) (*nats.Conn, func(), error) {
	if cfg.URL == "" {
		return nil, nil, errors.New("nats url is required")
	}

	opts := []nats.Option{}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
			nc.Close()
		}
	}
	return nc, cleanup, nil
}
