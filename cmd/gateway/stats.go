package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"service-pipeline/middleware/admission/domain"
	"service-pipeline/middleware/admission/infra"

	"github.com/redis/go-redis/v9"
)

// openStatsStore conecta o backend escolhido em STATS_BACKEND. O cleanup
// devolvido é sempre não-nil.
func openStatsStore(ctx context.Context, cfg gatewayConfig, logger *slog.Logger) (domain.StatsStore, func(), error) {
	noop := func() {}

	switch cfg.statsBackend {
	case "none", "":
		return nil, noop, nil

	case "memory":
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.statsTrackKeys)), noop, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis stats ping: %w", err)
		}
		store := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
		return store, func() { _ = rdb.Close() }, nil

	case "postgres":
		db, err := infra.OpenPostgres(ctx, cfg.postgresDSN)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		store := infra.NewPostgresStatsStore(db)
		if err := store.Migrate(ctx); err != nil {
			closeDB()
			return nil, noop, fmt.Errorf("migrate admission events: %w", err)
		}
		return store, closeDB, nil

	case "nats":
		nc, cleanup, err := infra.ConnectNATS(infra.NATSConfig{
			URL:         cfg.natsURL,
			Name:        "gateway",
			ConnTimeout: 2 * time.Second,
		})
		if err != nil {
			return nil, noop, err
		}
		return infra.NewNATSStatsStore(nc, cfg.statsSubject), cleanup, nil

	case "kafka":
		cl, cleanup, err := infra.NewKafkaClient(infra.KafkaConfig{
			Brokers:  cfg.kafkaBrokers,
			ClientID: "gateway",
		})
		if err != nil {
			return nil, noop, err
		}
		return infra.NewKafkaStatsStore(cl, cfg.kafkaTopic), cleanup, nil

	case "rabbitmq":
		ch, cleanup, err := infra.DialAMQP(cfg.amqpURL, cfg.amqpExchange)
		if err != nil {
			return nil, noop, err
		}
		return infra.NewAMQPStatsStore(ch, cfg.amqpExchange, cfg.statsSubject), cleanup, nil

	default:
		logger.Warn("unknown stats backend", "event", "stats_backend_unknown", "backend", cfg.statsBackend)
		return nil, noop, nil
	}
}
