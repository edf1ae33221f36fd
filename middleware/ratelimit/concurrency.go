package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"service-pipeline/middleware/admission"
	"service-pipeline/middleware/admission/application"
	"service-pipeline/middleware/admission/domain"
	"service-pipeline/middleware/admission/infra"
	"service-pipeline/service"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Stats          domain.StatsStore
	KeyFn          admission.KeyFunc
	Logger         *slog.Logger
}

// ConcurrencyLimit limita quantas chamadas ficam em andamento ao mesmo tempo.
// A vaga é adquirida no Ready, fica no handle até o Call e é liberada quando o
// Future do serviço interno termina (no primeiro Await que retornar).
type ConcurrencyLimit struct {
	inner    service.HTTP
	slots    application.SlotService
	status   int
	recorder admission.Recorder
	logger   *slog.Logger

	// estado do handle entre Ready e Call
	ready   bool
	release func()
	dec     domain.Decision
}

var _ service.HTTP = (*ConcurrencyLimit)(nil)

// ConcurrencyLayer devolve a layer de concorrência. Max <= 0 desativa o limite.
// A vaga é compartilhada por todas as pilhas montadas com a mesma layer.
func ConcurrencyLayer(opts ConcurrencyOptions) service.Layer[*http.Request, *http.Response] {
	if opts.Max <= 0 {
		return service.Identity[*http.Request, *http.Response]{}
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	slots := application.SlotService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return service.LayerFunc[*http.Request, *http.Response](func(inner service.HTTP) service.HTTP {
		return &ConcurrencyLimit{
			inner:  inner,
			slots:  slots,
			status: opts.RejectStatus,
			recorder: admission.Recorder{
				Store:  opts.Stats,
				Source: domain.SourceConcurrency,
				KeyFn:  opts.KeyFn,
				Logger: opts.Logger,
			},
			logger: opts.Logger,
		}
	})
}

// Ready espera uma vaga e depois o serviço interno. Se AcquireTimeout esgota
// antes, Ready devolve nil e o Call seguinte responde RejectStatus sem chegar
// ao serviço interno. Só o fim do ctx vira erro.
func (s *ConcurrencyLimit) Ready(ctx context.Context) error {
	if s.ready {
		return nil
	}

	release, dec := s.slots.Acquire(ctx)
	if !dec.Allowed {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.ready, s.release, s.dec = true, nil, dec
		return nil
	}
	if err := s.inner.Ready(ctx); err != nil {
		release()
		return err
	}

	s.ready, s.release, s.dec = true, release, dec
	return nil
}

// Call usa a vaga reservada por Ready (ou espera uma, se Ready não foi chamado).
func (s *ConcurrencyLimit) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	if !s.ready {
		if err := s.Ready(ctx); err != nil {
			return service.Failed[*http.Response](err)
		}
	}
	release, dec := s.release, s.dec
	s.ready, s.release, s.dec = false, nil, domain.Decision{}

	s.recorder.Record(ctx, r, dec)
	if !dec.Allowed {
		s.logger.Debug("no concurrency slot",
			"event", "concurrency_rejected",
			"path", r.URL.Path,
		)
		return service.Resolved(service.NewResponse(r, s.status))
	}

	return service.Then(s.inner.Call(ctx, r), func(*http.Response, error) { release() })
}

// Clone devolve um handle sem vaga reservada.
func (s *ConcurrencyLimit) Clone() service.HTTP {
	c := *s
	c.inner = service.Clone(s.inner)
	c.ready, c.release, c.dec = false, nil, domain.Decision{}
	return &c
}

// Release devolve a vaga reservada por Ready e a reserva do serviço interno.
func (s *ConcurrencyLimit) Release() {
	if s.release != nil {
		s.release()
	}
	s.ready, s.release, s.dec = false, nil, domain.Decision{}
	service.Release(s.inner)
}
