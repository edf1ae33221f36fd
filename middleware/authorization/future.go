package authorization

import (
	"context"
	"net/http"
	"sync"

	"service-pipeline/service"
)

type futureKind uint8

const (
	kindForward futureKind = iota
	kindImmediate
)

// ResponseFuture é o Future devolvido por RequireAuthorization.Call.
//
// Duas variantes: forward delega ao Future do serviço interno; immediate guarda a
// resposta de recusa, que só pode ser consumida uma vez. Um segundo Await na
// variante immediate é erro de lógica e entra em pânico.
type ResponseFuture struct {
	kind  futureKind
	inner service.Future[*http.Response]

	mu       sync.Mutex
	rejected *http.Response
}

var _ service.Future[*http.Response] = (*ResponseFuture)(nil)

func forward(inner service.Future[*http.Response]) *ResponseFuture {
	return &ResponseFuture{kind: kindForward, inner: inner}
}

func immediate(res *http.Response) *ResponseFuture {
	if res == nil {
		panic("authorization: Authorizer.UnauthorizedResponse returned nil")
	}
	return &ResponseFuture{kind: kindImmediate, rejected: res}
}

// Rejected informa se a requisição foi recusada (variante immediate).
func (f *ResponseFuture) Rejected() bool { return f.kind == kindImmediate }

func (f *ResponseFuture) Await(ctx context.Context) (*http.Response, error) {
	switch f.kind {
	case kindForward:
		return f.inner.Await(ctx)
	case kindImmediate:
		f.mu.Lock()
		res := f.rejected
		f.rejected = nil
		f.mu.Unlock()

		if res == nil {
			panic("authorization: ResponseFuture awaited after completion")
		}
		return res, nil
	default:
		panic("authorization: unknown ResponseFuture kind")
	}
}
