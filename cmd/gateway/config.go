package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"service-pipeline/internal/config"
	"service-pipeline/middleware/admission/infra"
)

type gatewayConfig struct {
	listenAddr  string
	upstreamURL string

	authScheme   string // "", "bearer" ou "basic"
	authToken    string
	authUser     string
	authPassword string

	rateEnabled bool
	rateRPS     float64
	rateBurst   int
	rateKey     string
	trustXFF    bool
	retryAfter  time.Duration
	addHeaders  bool

	rateKeyTTL     time.Duration
	rateSweepEvery time.Duration

	concurrencyMax     int
	concurrencyTimeout time.Duration
	bufferCapacity     int

	statsBackend   string
	statsPrefix    string
	statsSubject   string
	statsTTL       time.Duration
	statsBucket    string
	statsTrackKeys bool

	redisAddr     string
	redisPassword string
	redisDB       int
	postgresDSN   string
	natsURL       string
	kafkaBrokers  []string
	kafkaTopic    string
	amqpURL       string
	amqpExchange  string
}

func readConfig() (gatewayConfig, error) {
	cfg := gatewayConfig{}
	cfg.listenAddr = config.GetenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")

	cfg.authToken = os.Getenv("AUTH_TOKEN")
	cfg.authUser = os.Getenv("AUTH_USER")
	cfg.authPassword = os.Getenv("AUTH_PASSWORD")
	switch {
	case cfg.authToken != "":
		cfg.authScheme = "bearer"
	case cfg.authUser != "":
		cfg.authScheme = "basic"
	}

	cfg.rateEnabled = config.GetenvBoolDefault("RATE_ENABLED", true)
	cfg.rateRPS = config.GetenvFloatDefault("RATE_RPS", 10)
	// IMPORTANTE: o "burst" permite uma rajada inicial de requisições.
	// Com RPS muito baixo (ex: 0.02), o padrão 20 pode dar a impressão de que
	// o limiter não está funcionando, porque as primeiras ~20 passam.
	if burst, ok := config.GetenvInt("RATE_BURST"); ok {
		cfg.rateBurst = burst
	} else {
		cfg.rateBurst = 20
		if config.GetenvIsSet("RATE_RPS") && cfg.rateRPS > 0 && cfg.rateRPS < 1 {
			cfg.rateBurst = 1
		}
	}
	cfg.rateKey = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = config.GetenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = config.GetenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = config.GetenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.rateKeyTTL = config.GetenvDurationDefault("RATE_KEY_TTL", infra.DefaultIdlePolicy.TTL)
	cfg.rateSweepEvery = config.GetenvDurationDefault("RATE_SWEEP_EVERY", infra.DefaultIdlePolicy.SweepEvery)

	cfg.concurrencyMax = config.GetenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = config.GetenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.bufferCapacity = config.GetenvIntDefault("BUFFER_CAPACITY", 0)

	cfg.statsBackend = strings.ToLower(config.GetenvDefault("STATS_BACKEND", "none"))
	cfg.statsPrefix = config.GetenvDefault("STATS_PREFIX", "admission:stats")
	cfg.statsSubject = config.GetenvDefault("STATS_SUBJECT_PREFIX", "admission")
	cfg.statsTTL = config.GetenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = config.GetenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = config.GetenvBoolDefault("STATS_TRACK_KEYS", false)

	cfg.redisAddr = os.Getenv("STATS_REDIS_ADDR")
	cfg.redisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.redisDB = config.GetenvIntDefault("STATS_REDIS_DB", 0)
	cfg.postgresDSN = os.Getenv("STATS_POSTGRES_DSN")
	cfg.natsURL = config.GetenvDefault("STATS_NATS_URL", "nats://127.0.0.1:4222")
	cfg.kafkaBrokers = config.GetenvList("STATS_KAFKA_BROKERS")
	cfg.kafkaTopic = config.GetenvDefault("STATS_KAFKA_TOPIC", "admission.events")
	cfg.amqpURL = os.Getenv("STATS_AMQP_URL")
	cfg.amqpExchange = config.GetenvDefault("STATS_AMQP_EXCHANGE", "admission")

	if cfg.upstreamURL == "" {
		return gatewayConfig{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.rateRPS <= 0 {
		return gatewayConfig{}, errors.New("RATE_RPS must be > 0")
	}
	if cfg.rateBurst <= 0 {
		return gatewayConfig{}, errors.New("RATE_BURST must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return gatewayConfig{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.bufferCapacity < 0 {
		return gatewayConfig{}, errors.New("BUFFER_CAPACITY must be >= 0")
	}
	if cfg.authScheme == "basic" && cfg.authPassword == "" {
		return gatewayConfig{}, errors.New("AUTH_PASSWORD is required when AUTH_USER is set")
	}

	switch cfg.statsBackend {
	case "none", "memory", "nats":
	case "redis":
		if strings.TrimSpace(cfg.redisAddr) == "" {
			return gatewayConfig{}, errors.New("STATS_REDIS_ADDR is required when STATS_BACKEND=redis")
		}
	case "postgres":
		if cfg.postgresDSN == "" {
			return gatewayConfig{}, errors.New("STATS_POSTGRES_DSN is required when STATS_BACKEND=postgres")
		}
	case "kafka":
		if len(cfg.kafkaBrokers) == 0 {
			return gatewayConfig{}, errors.New("STATS_KAFKA_BROKERS is required when STATS_BACKEND=kafka")
		}
	case "rabbitmq":
		if cfg.amqpURL == "" {
			return gatewayConfig{}, errors.New("STATS_AMQP_URL is required when STATS_BACKEND=rabbitmq")
		}
	default:
		return gatewayConfig{}, errors.New("STATS_BACKEND must be one of none, memory, redis, postgres, nats, kafka, rabbitmq")
	}
	return cfg, nil
}
