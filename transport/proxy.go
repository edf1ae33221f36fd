package transport

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"

	"service-pipeline/service"
)

// headers que valem só para a conexão atual (RFC 9110, 7.6.1)
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy encaminha requisições recebidas por um servidor para target, como
// httputil.ReverseProxy faz, mas devolvendo a resposta em vez de escrevê-la.
type Proxy struct {
	target *url.URL
	rt     http.RoundTripper
}

var _ service.HTTP = (*Proxy)(nil)

// NewProxy usa http.DefaultTransport quando rt é nil.
func NewProxy(target *url.URL, rt http.RoundTripper) *Proxy {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &Proxy{target: target, rt: rt}
}

func (p *Proxy) Ready(ctx context.Context) error { return ctx.Err() }

func (p *Proxy) Call(ctx context.Context, r *http.Request) service.Future[*http.Response] {
	out := r.Clone(ctx)
	out.RequestURI = ""
	out.Close = false
	if r.ContentLength == 0 {
		out.Body = nil
	}
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}

	pr := &httputil.ProxyRequest{In: r, Out: out}
	pr.SetURL(p.target)
	pr.SetXForwarded()

	return service.Spawn(func() (*http.Response, error) {
		return p.rt.RoundTrip(pr.Out)
	})
}
