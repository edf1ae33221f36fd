package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-pipeline/buffer"
	"service-pipeline/internal/config"
	"service-pipeline/middleware/admission/infra"
	"service-pipeline/middleware/authorization"
	"service-pipeline/middleware/ratelimit"
	"service-pipeline/middleware/trace"
	"service-pipeline/service"

	"golang.org/x/sync/errgroup"
)

// Servidor key/value de exemplo: o par do cmd/client.
func main() {
	logger := config.LoggerFromEnv(os.Stderr)
	slog.SetDefault(logger)

	cfg, err := readConfig()
	if err != nil {
		logger.Error("config error", "event", "config_invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := infra.NewBucketStore(cfg.rateRPS, cfg.rateBurst, infra.WithBucketLogger(logger))
	kv := newKVStore()

	svc := service.NewBuilder[*http.Request, *http.Response]().
		Layer(trace.NewLayer(trace.Options{Logger: logger, Name: "kv"})).
		Layer(trace.RequestIDLayer()).
		LayerIf(cfg.authToken != "", authLayer(cfg, logger)).
		LayerIf(cfg.rateEnabled, ratelimit.NewLayer(ratelimit.Options{
			Store:               store,
			KeyHeader:           "X-Api-Key",
			AddRateLimitHeaders: true,
			Logger:              logger,
		})).
		Layer(buffer.NewLayer[*http.Request, *http.Response](cfg.bufferCapacity, buffer.WithLogger(logger))).
		Service(kv.Service())

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           service.Handler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error {
		logger.Info("example server listening",
			"event", "server_started",
			"addr", cfg.listenAddr,
			"auth", cfg.authToken != "",
			"rate", cfg.rateEnabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "event", "server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func authLayer(cfg serverConfig, logger *slog.Logger) service.Layer[*http.Request, *http.Response] {
	if cfg.authToken == "" {
		return service.Identity[*http.Request, *http.Response]{}
	}
	return authorization.BearerLayer(cfg.authToken, authorization.WithLogger(logger))
}

type serverConfig struct {
	listenAddr     string
	authToken      string
	rateEnabled    bool
	rateRPS        float64
	rateBurst      int
	bufferCapacity int
}

func readConfig() (serverConfig, error) {
	cfg := serverConfig{}
	cfg.listenAddr = config.GetenvDefault("LISTEN_ADDR", ":3000")
	cfg.authToken = os.Getenv("AUTH_TOKEN")
	cfg.rateEnabled = config.GetenvBoolDefault("RATE_ENABLED", false)
	cfg.rateRPS = config.GetenvFloatDefault("RATE_RPS", 5)
	cfg.rateBurst = config.GetenvIntDefault("RATE_BURST", 10)
	cfg.bufferCapacity = config.GetenvIntDefault("BUFFER_CAPACITY", 1024)

	if cfg.rateEnabled && cfg.rateRPS <= 0 {
		return serverConfig{}, errors.New("RATE_RPS must be > 0")
	}
	if cfg.rateBurst <= 0 {
		return serverConfig{}, errors.New("RATE_BURST must be > 0")
	}
	if cfg.bufferCapacity <= 0 {
		return serverConfig{}, errors.New("BUFFER_CAPACITY must be > 0")
	}
	return cfg, nil
}
