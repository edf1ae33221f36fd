package buffer

import "service-pipeline/service"

type layer[Req, Res any] struct {
	capacity int
	opts     []Option
}

// NewLayer embrulha o serviço num Buffer. Cada aplicação inicia um worker próprio.
func NewLayer[Req, Res any](capacity int, opts ...Option) service.Layer[Req, Res] {
	if capacity <= 0 {
		panic("buffer: capacity must be greater than zero")
	}
	return layer[Req, Res]{capacity: capacity, opts: opts}
}

func (l layer[Req, Res]) Layer(inner service.Service[Req, Res]) service.Service[Req, Res] {
	return New(inner, l.capacity, l.opts...)
}
