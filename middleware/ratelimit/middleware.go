package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"service-pipeline/middleware/admission"
	"service-pipeline/middleware/admission/application"
	"service-pipeline/middleware/admission/domain"
	"service-pipeline/service"
)

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               admission.KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              *slog.Logger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// RateLimit recusa requisições acima da taxa configurada para a chave do cliente.
type RateLimit struct {
	inner    service.HTTP
	opts     Options
	decider  application.RateService
	recorder admission.Recorder
}

var _ service.HTTP = (*RateLimit)(nil)

func (o Options) withDefaults() Options {
	if o.RejectStatus == 0 {
		o.RejectStatus = http.StatusTooManyRequests
	}
	if o.RetryAfter == 0 {
		o.RetryAfter = application.DefaultRetryAfter
	}
	if o.KeyFn == nil {
		o.KeyFn = admission.DefaultKeyFunc(o.KeyHeader, o.TrustXForwardedFor)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// NewLayer devolve a layer de rate limit. Sem Store, todas as requisições passam.
func NewLayer(opts Options) service.Layer[*http.Request, *http.Response] {
	opts = opts.withDefaults()
	return service.LayerFunc[*http.Request, *http.Response](func(inner service.HTTP) service.HTTP {
		return &RateLimit{
			inner: inner,
			opts:  opts,
			decider: application.RateService{
				Store:      opts.Store,
				RetryAfter: opts.RetryAfter,
			},
			recorder: admission.Recorder{
				Store:  opts.Stats,
				Source: domain.SourceRateLimit,
				KeyFn:  opts.KeyFn,
				Logger: opts.Logger,
			},
		}
	})
}

func (s *RateLimit) Ready(ctx context.Context) error { return s.inner.Ready(ctx) }

func (s *RateLimit) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	key := s.opts.KeyFn(r)

	dec := s.decider.Decide(domain.Key(key))
	s.recorder.Record(ctx, r, dec)

	if !dec.Allowed {
		service.Release(s.inner)
		s.opts.Logger.Debug("request rate limited",
			"event", "ratelimit_rejected",
			"key", key,
			"path", r.URL.Path,
		)
		res := service.NewResponse(r, s.opts.RejectStatus)
		s.setHeaders(res.Header, key)
		res.Header.Set("Retry-After", formatRetryAfter(dec.RetryAfter))
		return service.Resolved(res)
	}

	fut := s.inner.Call(ctx, r)
	if !s.opts.AddRateLimitHeaders {
		return fut
	}
	return service.Map(fut, func(res *http.Response, err error) (*http.Response, error) {
		if err == nil && res != nil {
			s.setHeaders(res.Header, key)
		}
		return res, err
	})
}

func (s *RateLimit) setHeaders(h http.Header, key string) {
	if !s.opts.AddRateLimitHeaders {
		return
	}
	h.Set("X-RateLimit-Key", key)
	if ri, ok := s.opts.Store.(rateInfo); ok {
		h.Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
		h.Set("X-RateLimit-Burst", formatInt(ri.Burst()))
	}
}

func (s *RateLimit) Clone() service.HTTP {
	c := *s
	c.inner = service.Clone(s.inner)
	return &c
}

func (s *RateLimit) Release() { service.Release(s.inner) }
