package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"service-pipeline/buffer"
	"service-pipeline/service"
)

const (
	DefaultBaseURL  = "http://localhost:3000"
	DefaultCapacity = 1024
)

type options struct {
	baseURL  string
	capacity int
	logger   *slog.Logger
}

type Option func(*options)

func WithBaseURL(raw string) Option {
	return func(o *options) { o.baseURL = raw }
}

// WithCapacity define quantas chamadas podem ficar na fila.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Client é seguro para uso concorrente: cada chamada usa o seu próprio handle
// do buffer.
type Client struct {
	buf     *buffer.Buffer[*http.Request, *http.Response]
	baseURL *url.URL
}

// New enfileira svc num buffer. Configuração inválida devolve *Error: KindURL
// para a URL base e KindQueue para capacidade <= 0.
func New(svc service.HTTP, opts ...Option) (*Client, error) {
	o := options{baseURL: DefaultBaseURL, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.capacity <= 0 {
		return nil, wrap(KindQueue, "new", fmt.Errorf("capacity must be greater than zero, got %d", o.capacity))
	}

	base, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, wrap(KindURL, "new", err)
	}

	return &Client{
		buf:     buffer.New(service.Box(svc), o.capacity, buffer.WithLogger(o.logger)),
		baseURL: base,
	}, nil
}

// AbsoluteURL resolve path contra a URL base.
func (c *Client) AbsoluteURL(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, wrap(KindURL, "absolute_url", err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// NewRequest monta uma requisição para u.
func (c *Client) NewRequest(ctx context.Context, method string, u *url.URL, body []byte) (*http.Request, error) {
	var rd io.Reader = http.NoBody
	if len(body) > 0 {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, wrap(KindRequest, "new_request", err)
	}
	return req, nil
}

// Post envia body para route e descarta a resposta.
func (c *Client) Post(ctx context.Context, route string, body []byte) error {
	u, err := c.AbsoluteURL(route)
	if err != nil {
		return err
	}
	req, err := c.NewRequest(ctx, http.MethodPost, u, body)
	if err != nil {
		return err
	}

	res, err := c.Execute(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, res.Body)
	if err := res.Body.Close(); err != nil {
		return wrap(KindBody, "post", err)
	}
	return nil
}

// Get devolve o corpo da resposta de route.
func (c *Client) Get(ctx context.Context, route string) ([]byte, error) {
	u, err := c.AbsoluteURL(route)
	if err != nil {
		return nil, err
	}
	req, err := c.NewRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, wrap(KindBody, "get", err)
	}
	return body, nil
}

// Execute espera uma posição na fila, enfileira req e aguarda a resposta.
func (c *Client) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	svc := c.buf.Clone()
	if err := svc.Ready(ctx); err != nil {
		return nil, serviceErr("ready", err)
	}

	res, err := svc.Call(ctx, req).Await(ctx)
	if err != nil {
		return nil, serviceErr("call", err)
	}
	if res.Body == nil {
		res.Body = http.NoBody
	}
	return res, nil
}

// Close encerra o buffer. Chamadas pendentes falham com KindQueue.
func (c *Client) Close() error {
	return c.buf.Close()
}
