package trace

import (
	"context"
	"net/http"

	"service-pipeline/service"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

type requestID struct {
	inner service.HTTP
}

// RequestIDLayer gera um X-Request-Id (uuid v4) quando a requisição não traz um
// e copia o valor para a resposta.
func RequestIDLayer() service.Layer[*http.Request, *http.Response] {
	return service.LayerFunc[*http.Request, *http.Response](func(inner service.HTTP) service.HTTP {
		return &requestID{inner: inner}
	})
}

func (s *requestID) Ready(ctx context.Context) error { return s.inner.Ready(ctx) }

func (s *requestID) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, id)
	}

	return service.Map(s.inner.Call(ctx, r), func(res *http.Response, err error) (*http.Response, error) {
		if err == nil && res != nil && res.Header != nil && res.Header.Get(RequestIDHeader) == "" {
			res.Header.Set(RequestIDHeader, id)
		}
		return res, err
	})
}

func (s *requestID) Clone() service.HTTP {
	return &requestID{inner: service.Clone(s.inner)}
}

func (s *requestID) Release() { service.Release(s.inner) }
