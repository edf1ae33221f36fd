package authorization

import (
	"context"
	"log/slog"
	"net/http"

	"service-pipeline/middleware/admission"
	"service-pipeline/middleware/admission/domain"
	"service-pipeline/service"
)

type options struct {
	stats  domain.StatsStore
	keyFn  admission.KeyFunc
	logger *slog.Logger
}

type Option func(*options)

// WithStats registra cada decisão (best-effort) no store.
func WithStats(store domain.StatsStore) Option {
	return func(o *options) { o.stats = store }
}

// WithKeyFunc define a chave do cliente usada nos eventos de stats.
func WithKeyFunc(fn admission.KeyFunc) Option {
	return func(o *options) { o.keyFn = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// RequireAuthorization é o middleware que autoriza toda requisição antes de
// encaminhá-la ao serviço interno.
type RequireAuthorization[Out any] struct {
	inner    service.HTTP
	auth     Authorizer[Out]
	recorder admission.Recorder
	logger   *slog.Logger
}

var _ service.HTTP = (*RequireAuthorization[struct{}])(nil)

// New autoriza com um esquema próprio.
func New[Out any](inner service.HTTP, auth Authorizer[Out], opts ...Option) *RequireAuthorization[Out] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &RequireAuthorization[Out]{
		inner: inner,
		auth:  auth,
		recorder: admission.Recorder{
			Store:  o.stats,
			Source: domain.SourceAuthorization,
			KeyFn:  o.keyFn,
			Logger: o.logger,
		},
		logger: o.logger,
	}
}

// Bearer exige "Authorization: Bearer {token}". Entra em pânico se o token não
// for um valor de header válido.
func Bearer(inner service.HTTP, token string, opts ...Option) *RequireAuthorization[struct{}] {
	return New[struct{}](inner, NewBearer(token), opts...)
}

// Basic exige "Authorization: Basic base64({username}:{password})".
func Basic(inner service.HTTP, username, password string, opts ...Option) *RequireAuthorization[struct{}] {
	return New[struct{}](inner, NewBasic(username, password), opts...)
}

// Ready é delegado inteiro ao serviço interno: a decisão não faz I/O.
func (s *RequireAuthorization[Out]) Ready(ctx context.Context) error {
	return s.inner.Ready(ctx)
}

func (s *RequireAuthorization[Out]) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	out, ok := s.auth.Authorize(r)
	if ok {
		s.recorder.Record(ctx, r, domain.Decision{Allowed: true})
		r = s.auth.OnAuthorized(r, out)
		return forward(s.inner.Call(ctx, r))
	}

	reason := domain.ReasonInvalidCredentials
	if r.Header.Get("Authorization") == "" {
		reason = domain.ReasonMissingCredentials
	}
	s.recorder.Record(ctx, r, domain.Decision{Allowed: false, Reason: reason})
	service.Release(s.inner)
	s.logger.Debug("request rejected",
		"event", "authorization_rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"reason", reason,
	)
	return immediate(s.auth.UnauthorizedResponse(r))
}

// Clone mantém o contrato de handle por chamador quando o serviço interno é um Cloner.
func (s *RequireAuthorization[Out]) Clone() service.HTTP {
	c := *s
	c.inner = service.Clone(s.inner)
	return &c
}

func (s *RequireAuthorization[Out]) Release() { service.Release(s.inner) }

// Layer aplica RequireAuthorization. O esquema é um valor imutável copiado a cada
// aplicação, então a mesma Layer monta pilhas independentes.
type Layer[Out any] struct {
	auth Authorizer[Out]
	opts []Option
}

var _ service.Layer[*http.Request, *http.Response] = Layer[struct{}]{}

func NewLayer[Out any](auth Authorizer[Out], opts ...Option) Layer[Out] {
	return Layer[Out]{auth: auth, opts: opts}
}

func BearerLayer(token string, opts ...Option) Layer[struct{}] {
	return NewLayer[struct{}](NewBearer(token), opts...)
}

func BasicLayer(username, password string, opts ...Option) Layer[struct{}] {
	return NewLayer[struct{}](NewBasic(username, password), opts...)
}

func (l Layer[Out]) Layer(inner service.HTTP) service.HTTP {
	return New(inner, l.auth, l.opts...)
}
