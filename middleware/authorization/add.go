package authorization

import (
	"context"
	"net/http"

	"service-pipeline/service"
)

// AddAuthorization coloca o header Authorization em toda requisição de saída.
// Usado do lado do cliente, na frente de um transport.
type AddAuthorization struct {
	inner service.HTTP
	value string
}

var _ service.HTTP = (*AddAuthorization)(nil)

func (s *AddAuthorization) Ready(ctx context.Context) error { return s.inner.Ready(ctx) }

func (s *AddAuthorization) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", s.value)
	return s.inner.Call(ctx, r)
}

func (s *AddAuthorization) Clone() service.HTTP {
	return &AddAuthorization{inner: service.Clone(s.inner), value: s.value}
}

func (s *AddAuthorization) Release() { service.Release(s.inner) }

// AddLayer aplica AddAuthorization com um valor de header já validado.
type AddLayer struct {
	value string
}

var _ service.Layer[*http.Request, *http.Response] = AddLayer{}

// AddBearerLayer envia "Bearer {token}". Entra em pânico com token inválido.
func AddBearerLayer(token string) AddLayer {
	return AddLayer{value: mustHeaderValue("Bearer "+token, "token")}
}

// AddBasicLayer envia "Basic base64({username}:{password})".
func AddBasicLayer(username, password string) AddLayer {
	return AddLayer{value: mustHeaderValue(basicValue(username, password), "credentials")}
}

func (l AddLayer) Layer(inner service.HTTP) service.HTTP {
	return &AddAuthorization{inner: inner, value: l.value}
}
