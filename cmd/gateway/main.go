package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-pipeline/buffer"
	"service-pipeline/internal/config"
	"service-pipeline/middleware/admission/domain"
	"service-pipeline/middleware/admission/infra"
	"service-pipeline/middleware/authorization"
	"service-pipeline/middleware/ratelimit"
	"service-pipeline/middleware/trace"
	"service-pipeline/service"
	"service-pipeline/transport"

	"golang.org/x/sync/errgroup"
)

func main() {
	logger := config.LoggerFromEnv(os.Stderr)
	slog.SetDefault(logger)

	cfg, err := readConfig()
	if err != nil {
		fatal(logger, "config error", err)
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		fatal(logger, "invalid UPSTREAM_URL", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats, closeStats, err := openStatsStore(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "stats backend error", err)
	}
	defer closeStats()

	store := infra.NewBucketStore(cfg.rateRPS, cfg.rateBurst,
		infra.WithIdlePolicy(domain.IdlePolicy{TTL: cfg.rateKeyTTL, SweepEvery: cfg.rateSweepEvery}),
		infra.WithBucketLogger(logger),
	)
	svc := buildStack(cfg, target, store, stats, logger)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           service.Handler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("gateway listening",
		"event", "gateway_started",
		"addr", cfg.listenAddr,
		"upstream", target.String(),
		"auth", cfg.authScheme,
	)
	logger.Info("rate",
		"enabled", cfg.rateEnabled,
		"rps", cfg.rateRPS,
		"burst", cfg.rateBurst,
		"key_header", cfg.rateKey,
		"trust_xff", cfg.trustXFF,
		"key_ttl", cfg.rateKeyTTL.String(),
	)
	logger.Info("admission",
		"concurrency_max", cfg.concurrencyMax,
		"acquire_timeout", cfg.concurrencyTimeout.String(),
		"buffer_capacity", cfg.bufferCapacity,
		"stats_backend", cfg.statsBackend,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fatal(logger, "server error", err)
	}
}

// buildStack monta, de fora para dentro: trace, request-id, autorização,
// rate limit, concorrência, buffer (opcional) e o proxy para o upstream.
func buildStack(cfg gatewayConfig, target *url.URL, store domain.LimiterStore, stats domain.StatsStore, logger *slog.Logger) service.HTTP {
	return service.NewBuilder[*http.Request, *http.Response]().
		Layer(trace.NewLayer(trace.Options{
			Logger:     logger,
			Classifier: trace.ServerErrorsAsFailures(),
			Name:       "gateway",
		})).
		Layer(trace.RequestIDLayer()).
		Layer(authLayer(cfg, stats, logger)).
		LayerIf(cfg.rateEnabled, ratelimit.NewLayer(ratelimit.Options{
			Store:               store,
			Stats:               stats,
			KeyHeader:           cfg.rateKey,
			TrustXForwardedFor:  cfg.trustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.retryAfter,
			AddRateLimitHeaders: cfg.addHeaders,
			Logger:              logger,
		})).
		Layer(ratelimit.ConcurrencyLayer(ratelimit.ConcurrencyOptions{
			Max:            cfg.concurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.concurrencyTimeout,
			Stats:          stats,
			Logger:         logger,
		})).
		LayerIf(cfg.bufferCapacity > 0, bufferLayer(cfg.bufferCapacity, logger)).
		Service(transport.NewProxy(target, nil))
}

func authLayer(cfg gatewayConfig, stats domain.StatsStore, logger *slog.Logger) service.Layer[*http.Request, *http.Response] {
	opts := []authorization.Option{
		authorization.WithStats(stats),
		authorization.WithLogger(logger),
	}
	switch cfg.authScheme {
	case "bearer":
		return authorization.BearerLayer(cfg.authToken, opts...)
	case "basic":
		return authorization.BasicLayer(cfg.authUser, cfg.authPassword, opts...)
	default:
		return service.Identity[*http.Request, *http.Response]{}
	}
}

func bufferLayer(capacity int, logger *slog.Logger) service.Layer[*http.Request, *http.Response] {
	if capacity <= 0 {
		return service.Identity[*http.Request, *http.Response]{}
	}
	return buffer.NewLayer[*http.Request, *http.Response](capacity, buffer.WithLogger(logger))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "event", "gateway_failed", "error", err.Error())
	os.Exit(1)
}
