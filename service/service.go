package service

import (
	"context"
	"net/http"
)

// Service é a unidade básica do pipeline: recebe uma requisição e produz,
// de forma assíncrona, uma resposta ou um erro.
//
// Contrato:
//   - Ready bloqueia até o serviço aceitar exatamente mais uma chamada, até o ctx
//     encerrar, ou até o serviço falhar de forma permanente (retorna erro).
//   - Um Ready bem-sucedido autoriza exatamente um Call seguinte no mesmo handle.
//   - Call não bloqueia no trabalho em si; erros viajam dentro do Future.
//
// Chamar Call sem Ready é violação de contrato (comportamento definido pela
// implementação, não um erro garantido).
type Service[Req, Res any] interface {
	Ready(ctx context.Context) error
	Call(ctx context.Context, req Req) Future[Res]
}

// HTTP é o Service usado pelas camadas de middleware deste módulo.
type HTTP = Service[*http.Request, *http.Response]

// Cloner é implementado por handles que precisam ser clonados por chamador
// (ex: buffer.Buffer, onde o handle guarda a vaga reservada por Ready).
type Cloner[Req, Res any] interface {
	Clone() Service[Req, Res]
}

// Releaser é implementado por handles que reservam capacidade em Ready
// (ex: buffer.Buffer). Release devolve a reserva quando o Call não vai acontecer,
// como numa recusa de middleware.
type Releaser interface {
	Release()
}

// Release devolve a reserva de s, se houver. Wrappers repassam ao serviço interno.
func Release[Req, Res any](s Service[Req, Res]) {
	if r, ok := s.(Releaser); ok {
		r.Release()
	}
}

// Clone devolve um handle próprio para o chamador quando o serviço é um Cloner;
// caso contrário devolve o próprio serviço.
func Clone[Req, Res any](s Service[Req, Res]) Service[Req, Res] {
	if c, ok := s.(Cloner[Req, Res]); ok {
		return c.Clone()
	}
	return s
}

// Func adapta uma função comum em Service. Está sempre pronta; a função só roda
// no primeiro Await do Future devolvido.
type Func[Req, Res any] func(ctx context.Context, req Req) (Res, error)

func (f Func[Req, Res]) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (f Func[Req, Res]) Call(ctx context.Context, req Req) Future[Res] {
	return Lazy(func() (Res, error) { return f(ctx, req) })
}

// Oneshot espera o serviço ficar pronto, faz uma chamada e aguarda o resultado.
func Oneshot[Req, Res any](ctx context.Context, s Service[Req, Res], req Req) (Res, error) {
	if err := s.Ready(ctx); err != nil {
		var zero Res
		return zero, err
	}
	return s.Call(ctx, req).Await(ctx)
}

type boxed[Req, Res any] struct {
	inner Service[Req, Res]
}

// Box esconde o tipo concreto do serviço atrás da interface, permitindo pilhas
// heterogêneas. Cloner continua sendo respeitado.
func Box[Req, Res any](s Service[Req, Res]) Service[Req, Res] {
	if b, ok := s.(boxed[Req, Res]); ok {
		return b
	}
	return boxed[Req, Res]{inner: s}
}

func (b boxed[Req, Res]) Ready(ctx context.Context) error { return b.inner.Ready(ctx) }

func (b boxed[Req, Res]) Call(ctx context.Context, req Req) Future[Res] {
	return b.inner.Call(ctx, req)
}

func (b boxed[Req, Res]) Clone() Service[Req, Res] {
	return boxed[Req, Res]{inner: Clone(b.inner)}
}

func (b boxed[Req, Res]) Release() { Release(b.inner) }

type mapErr[Req, Res any] struct {
	inner Service[Req, Res]
	fn    func(error) error
}

// MapErr reescreve os erros que saem do serviço, tanto de Ready quanto do Future.
func MapErr[Req, Res any](s Service[Req, Res], fn func(error) error) Service[Req, Res] {
	return mapErr[Req, Res]{inner: s, fn: fn}
}

func (m mapErr[Req, Res]) Ready(ctx context.Context) error {
	if err := m.inner.Ready(ctx); err != nil {
		return m.fn(err)
	}
	return nil
}

func (m mapErr[Req, Res]) Call(ctx context.Context, req Req) Future[Res] {
	return Map(m.inner.Call(ctx, req), func(res Res, err error) (Res, error) {
		if err != nil {
			return res, m.fn(err)
		}
		return res, nil
	})
}

func (m mapErr[Req, Res]) Clone() Service[Req, Res] {
	return mapErr[Req, Res]{inner: Clone(m.inner), fn: m.fn}
}

func (m mapErr[Req, Res]) Release() { Release(m.inner) }
