package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-pipeline/client"
	"service-pipeline/internal/config"
	"service-pipeline/middleware/authorization"
	"service-pipeline/middleware/trace"
	"service-pipeline/service"
	"service-pipeline/transport"
)

// Smoke test do cmd/example-server: grava "bar" em foo e confere a leitura.
func main() {
	logger := config.LoggerFromEnv(os.Stderr)
	slog.SetDefault(logger)

	cfg := readConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.timeout)
	defer cancelTimeout()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("smoke test failed", "event", "client_failed", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("done", "event", "client_done")
}

type clientConfig struct {
	baseURL   string
	authToken string
	authUser  string
	authPass  string
	timeout   time.Duration
	route     string
	value     string
}

func readConfig() clientConfig {
	return clientConfig{
		baseURL:   config.GetenvDefault("BASE_URL", client.DefaultBaseURL),
		authToken: os.Getenv("AUTH_TOKEN"),
		authUser:  os.Getenv("AUTH_USER"),
		authPass:  os.Getenv("AUTH_PASSWORD"),
		timeout:   config.GetenvDurationDefault("CLIENT_TIMEOUT", 10*time.Second),
		route:     config.GetenvDefault("ROUTE", "foo"),
		value:     config.GetenvDefault("VALUE", "bar"),
	}
}

func newClient(cfg clientConfig, logger *slog.Logger) (*client.Client, error) {
	svc := service.NewBuilder[*http.Request, *http.Response]().
		Layer(trace.NewLayer(trace.Options{
			Logger:     logger,
			Classifier: trace.StatusInRangeAsFailures(400, 599),
		})).
		Layer(addAuth(cfg)).
		Service(transport.NewHTTP(&http.Client{Timeout: cfg.timeout}))

	return client.New(svc, client.WithBaseURL(cfg.baseURL), client.WithLogger(logger))
}

// token tem precedência sobre usuário/senha
func addAuth(cfg clientConfig) service.Layer[*http.Request, *http.Response] {
	switch {
	case cfg.authToken != "":
		return authorization.AddBearerLayer(cfg.authToken)
	case cfg.authUser != "":
		return authorization.AddBasicLayer(cfg.authUser, cfg.authPass)
	default:
		return service.Identity[*http.Request, *http.Response]{}
	}
}

func run(ctx context.Context, cfg clientConfig, logger *slog.Logger) error {
	c, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	want := []byte(cfg.value)

	logger.Info("writing", "event", "client_write", "route", cfg.route, "value", cfg.value)
	if err := c.Post(ctx, cfg.route, want); err != nil {
		return err
	}

	logger.Info("reading", "event", "client_read", "route", cfg.route)
	got, err := c.Get(ctx, cfg.route)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return errors.New("read value " + string(got) + " does not match written value " + cfg.value)
	}
	return nil
}
