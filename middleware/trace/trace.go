package trace

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"service-pipeline/service"
)

type Options struct {
	Logger     *slog.Logger
	Classifier Classifier
	// Name aparece como atributo "service" em cada linha. Opcional.
	Name string
}

// Trace registra início e fim de cada chamada.
type Trace struct {
	inner service.HTTP
	opts  Options
}

var _ service.HTTP = (*Trace)(nil)

func NewLayer(opts Options) service.Layer[*http.Request, *http.Response] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Classifier == nil {
		opts.Classifier = StatusInRangeAsFailures(400, 599)
	}
	if opts.Name != "" {
		opts.Logger = opts.Logger.With("service", opts.Name)
	}
	return service.LayerFunc[*http.Request, *http.Response](func(inner service.HTTP) service.HTTP {
		return &Trace{inner: inner, opts: opts}
	})
}

func (s *Trace) Ready(ctx context.Context) error { return s.inner.Ready(ctx) }

func (s *Trace) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	start := time.Now()
	logger := s.opts.Logger.With(
		"method", r.Method,
		"url", r.URL.String(),
	)
	if id := r.Header.Get(RequestIDHeader); id != "" {
		logger = logger.With("request_id", id)
	}
	logger.Debug("request started", "event", "request_started")

	return service.Then(s.inner.Call(ctx, r), func(res *http.Response, err error) {
		attrs := []any{"latency", formatLatency(time.Since(start))}
		if res != nil {
			attrs = append(attrs, "status", res.StatusCode)
		}
		if err != nil {
			attrs = append(attrs, "error", err.Error())
		}

		if !s.opts.Classifier(res, err) {
			logger.Info("request finished", append(attrs, "event", "request_finished")...)
			return
		}
		logger.Error("request failed", append(attrs, "event", "request_failed")...)
	})
}

func (s *Trace) Clone() service.HTTP {
	return &Trace{inner: service.Clone(s.inner), opts: s.opts}
}

func (s *Trace) Release() { service.Release(s.inner) }

// µs abaixo de 10ms, ms acima
func formatLatency(d time.Duration) string {
	if d < 10*time.Millisecond {
		return fmt.Sprintf("%dµs", max(d.Microseconds(), 0))
	}
	return fmt.Sprintf("%dms", max(d.Milliseconds(), 0))
}
