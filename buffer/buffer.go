package buffer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"service-pipeline/middleware/admission/infra"
	"service-pipeline/service"

	"github.com/google/uuid"
)

type result[Res any] struct {
	res Res
	err error
}

// message é uma entrada da fila.
type message[Req, Res any] struct {
	ctx      context.Context
	req      Req
	id       uuid.UUID
	tx       chan result[Res]
	release  func()
	queuedAt time.Time
}

func (m *message[Req, Res]) fail(err error) {
	m.release()
	m.tx <- result[Res]{err: err}
}

// worker é o estado compartilhado entre todos os handles.
type worker[Req, Res any] struct {
	inner  service.Service[Req, Res]
	slots  *infra.ChanPool
	queue  chan *message[Req, Res]
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// mu protege err. Envios para a fila acontecem sob RLock, então depois que
	// err é definido sob Lock nenhuma entrada nova chega à fila.
	mu  sync.RWMutex
	err error
}

// Buffer é um service.Service que encaminha as chamadas para o worker.
type Buffer[Req, Res any] struct {
	w       *worker[Req, Res]
	release func()
}

var (
	_ service.Service[string, string] = (*Buffer[string, string])(nil)
	_ service.Cloner[string, string]  = (*Buffer[string, string])(nil)
	_ service.Releaser                = (*Buffer[string, string])(nil)
)

// New inicia o worker sobre svc com uma fila de `capacity` posições.
// capacity <= 0 entra em pânico.
func New[Req, Res any](svc service.Service[Req, Res], capacity int, opts ...Option) *Buffer[Req, Res] {
	if capacity <= 0 {
		panic("buffer: capacity must be greater than zero")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &worker[Req, Res]{
		inner:  svc,
		slots:  infra.NewChanPool(capacity),
		queue:  make(chan *message[Req, Res], capacity),
		logger: o.logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go w.run()

	return &Buffer[Req, Res]{w: w}
}

// Ready reserva uma posição na fila. Bloqueia enquanto todas estiverem ocupadas.
// Chamar Ready de novo sem um Call no meio não reserva outra posição.
func (b *Buffer[Req, Res]) Ready(ctx context.Context) error {
	if b.release != nil {
		return nil
	}
	if err := b.w.failure(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// a espera também termina quando o worker morre
	acqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(b.w.ctx, cancel)
	defer stop()

	release, ok := b.w.slots.Acquire(acqCtx)
	if !ok {
		if err := b.w.failure(); err != nil {
			return err
		}
		return ctx.Err()
	}
	if err := b.w.failure(); err != nil {
		release()
		return err
	}

	b.release = release
	return nil
}

// Call enfileira req usando a posição reservada por Ready (ou reserva uma,
// se Ready não foi chamado).
func (b *Buffer[Req, Res]) Call(ctx context.Context, req Req) service.Future[Res] {
	if b.release == nil {
		if err := b.Ready(ctx); err != nil {
			return service.Failed[Res](err)
		}
	}
	release := b.release
	b.release = nil

	msg := &message[Req, Res]{
		ctx:      ctx,
		req:      req,
		id:       uuid.New(),
		tx:       make(chan result[Res], 1),
		release:  release,
		queuedAt: time.Now(),
	}

	b.w.mu.RLock()
	if err := b.w.err; err != nil {
		b.w.mu.RUnlock()
		release()
		return service.Failed[Res](err)
	}
	// nunca bloqueia: há no máximo `capacity` posições reservadas
	b.w.queue <- msg
	b.w.mu.RUnlock()

	return &responseFuture[Res]{rx: msg.tx}
}

// Clone devolve outro handle sobre o mesmo worker, sem posição reservada.
func (b *Buffer[Req, Res]) Clone() service.Service[Req, Res] {
	return &Buffer[Req, Res]{w: b.w}
}

// Release devolve a posição reservada por Ready sem enfileirar nada.
func (b *Buffer[Req, Res]) Release() {
	if b.release != nil {
		b.release()
		b.release = nil
	}
}

// Close encerra o worker. Chamadas pendentes e futuras falham com
// service.ErrClosed. Pode ser chamado mais de uma vez.
func (b *Buffer[Req, Res]) Close() error {
	b.w.mu.Lock()
	if b.w.err == nil {
		b.w.err = service.ErrClosed
	}
	b.w.mu.Unlock()

	b.w.cancel()
	<-b.w.done
	return nil
}

// Err devolve o erro terminal do buffer, ou nil enquanto ele estiver ativo.
func (b *Buffer[Req, Res]) Err() error {
	return b.w.failure()
}

func (w *worker[Req, Res]) failure() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// fail registra cause como erro terminal (se ainda não houver um) e devolve o
// erro efetivo.
func (w *worker[Req, Res]) fail(cause error) error {
	w.mu.Lock()
	if w.err == nil {
		w.err = cause
	}
	err := w.err
	w.mu.Unlock()

	w.cancel()
	return err
}

func (w *worker[Req, Res]) drain(err error) {
	for {
		select {
		case msg := <-w.queue:
			msg.fail(err)
		default:
			return
		}
	}
}

func (w *worker[Req, Res]) run() {
	defer close(w.done)

	ready := false
	for {
		var msg *message[Req, Res]
		select {
		case msg = <-w.queue:
		case <-w.ctx.Done():
			w.drain(w.fail(service.ErrClosed))
			return
		}
		if w.ctx.Err() != nil {
			err := w.fail(service.ErrClosed)
			msg.fail(err)
			w.drain(err)
			return
		}

		if w.skip(msg) {
			continue
		}

		if !ready {
			if err := w.inner.Ready(w.ctx); err != nil {
				fatal := w.fail(fmt.Errorf("buffer: inner service not ready: %w",
					errors.Join(service.ErrServiceFailed, err)))
				if !errors.Is(fatal, service.ErrClosed) {
					w.logger.Error("buffer worker failed",
						"event", "buffer_worker_failed",
						"error", err.Error(),
					)
				}
				msg.fail(fatal)
				w.drain(fatal)
				return
			}
			ready = true
		}

		// o chamador pode ter desistido enquanto o serviço ficava pronto;
		// a prontidão fica para a próxima entrada
		if w.skip(msg) {
			continue
		}
		ready = false

		w.logger.Debug("buffer dispatch",
			"event", "buffer_dispatch",
			"id", msg.id.String(),
			"queued", time.Since(msg.queuedAt).String(),
		)

		fut := w.inner.Call(msg.ctx, msg.req)
		msg.release()
		// o prazo do chamador vale no Await dele; aqui o resultado sempre chega
		// ao canal, para quem insistir receber (e fechar) a resposta
		go func(msg *message[Req, Res]) {
			res, err := fut.Await(context.Background())
			msg.tx <- result[Res]{res: res, err: err}
		}(msg)
	}
}

// skip descarta a entrada cujo chamador já desistiu, sem chamar o serviço.
func (w *worker[Req, Res]) skip(msg *message[Req, Res]) bool {
	err := msg.ctx.Err()
	if err == nil {
		return false
	}
	w.logger.Debug("buffer entry skipped",
		"event", "buffer_skip",
		"id", msg.id.String(),
		"error", err.Error(),
	)
	msg.fail(err)
	return true
}

// responseFuture espera o resultado roteado pelo worker.
type responseFuture[Res any] struct {
	rx <-chan result[Res]

	mu   sync.Mutex
	done bool
	res  result[Res]
}

func (f *responseFuture[Res]) Await(ctx context.Context) (Res, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.done {
		select {
		case r := <-f.rx:
			f.res, f.done = r, true
		case <-ctx.Done():
			var zero Res
			return zero, ctx.Err()
		}
	}
	return f.res.res, f.res.err
}
