package service

import (
	"context"
	"sync"
)

// Future é o handle de um resultado que pode ainda não estar pronto.
//
// Await bloqueia até o resultado ficar disponível ou até o ctx encerrar. O ctx de
// Await limita apenas a espera; o trabalho segue o ctx passado a Call.
type Future[Res any] interface {
	Await(ctx context.Context) (Res, error)
}

type resolved[Res any] struct {
	res Res
	err error
}

func (r resolved[Res]) Await(context.Context) (Res, error) { return r.res, r.err }

// Resolved devolve um Future já completo com sucesso.
func Resolved[Res any](res Res) Future[Res] { return resolved[Res]{res: res} }

// Failed devolve um Future já completo com erro.
func Failed[Res any](err error) Future[Res] { return resolved[Res]{err: err} }

// promise roda fn no máximo uma vez, numa goroutine própria, e guarda o resultado.
type promise[Res any] struct {
	fn    func() (Res, error)
	start sync.Once
	done  chan struct{}
	res   Res
	err   error
}

func newPromise[Res any](fn func() (Res, error)) *promise[Res] {
	return &promise[Res]{fn: fn, done: make(chan struct{})}
}

func (p *promise[Res]) run() {
	p.start.Do(func() {
		go func() {
			defer close(p.done)
			p.res, p.err = p.fn()
		}()
	})
}

func (p *promise[Res]) Await(ctx context.Context) (Res, error) {
	p.run()
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		var zero Res
		return zero, ctx.Err()
	}
}

// Spawn inicia fn imediatamente numa goroutine.
func Spawn[Res any](fn func() (Res, error)) Future[Res] {
	p := newPromise(fn)
	p.run()
	return p
}

// Lazy só inicia fn no primeiro Await.
func Lazy[Res any](fn func() (Res, error)) Future[Res] {
	return newPromise(fn)
}

type mapped[Res any] struct {
	inner Future[Res]
	fn    func(Res, error) (Res, error)
}

func (m mapped[Res]) Await(ctx context.Context) (Res, error) {
	return m.fn(m.inner.Await(ctx))
}

// Map aplica fn ao resultado de f a cada Await.
func Map[Res any](f Future[Res], fn func(Res, error) (Res, error)) Future[Res] {
	return mapped[Res]{inner: f, fn: fn}
}

// Then roda fn uma única vez, no primeiro Await que retornar (inclusive quando o
// ctx do chamador encerra a espera).
func Then[Res any](f Future[Res], fn func(Res, error)) Future[Res] {
	var once sync.Once
	return Map(f, func(res Res, err error) (Res, error) {
		once.Do(func() { fn(res, err) })
		return res, err
	})
}
