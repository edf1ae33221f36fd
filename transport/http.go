package transport

import (
	"context"
	"net/http"

	"service-pipeline/service"
)

// HTTP é um service.HTTP que executa cada requisição com um *http.Client.
// Está sempre pronto; a conexão é aberta no Call.
type HTTP struct {
	client *http.Client
}

var _ service.HTTP = (*HTTP)(nil)

// NewHTTP usa http.DefaultClient quando client é nil.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client}
}

func (t *HTTP) Ready(ctx context.Context) error { return ctx.Err() }

func (t *HTTP) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	return service.Spawn(func() (*http.Response, error) {
		return t.client.Do(r.WithContext(ctx))
	})
}
