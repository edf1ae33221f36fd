package service

// Layer embrulha um serviço interno e devolve um novo serviço com comportamento
// adicional. Deve ser síncrono e sem estado (ou barato de copiar), para poder ser
// reaplicado na montagem de pilhas independentes.
type Layer[Req, Res any] interface {
	Layer(inner Service[Req, Res]) Service[Req, Res]
}

// LayerFunc adapta uma função em Layer.
type LayerFunc[Req, Res any] func(inner Service[Req, Res]) Service[Req, Res]

func (f LayerFunc[Req, Res]) Layer(inner Service[Req, Res]) Service[Req, Res] {
	return f(inner)
}

// Identity devolve o serviço interno sem alterações.
type Identity[Req, Res any] struct{}

func (Identity[Req, Res]) Layer(inner Service[Req, Res]) Service[Req, Res] { return inner }

// Builder empilha layers. A primeira layer adicionada fica mais externa:
//
//	NewBuilder[Req, Res]().Layer(a).Layer(b).Service(s) == a(b(s))
//
// Cada chamada de Layer devolve um novo Builder; o receptor não é alterado.
type Builder[Req, Res any] struct {
	layers []Layer[Req, Res]
}

func NewBuilder[Req, Res any]() Builder[Req, Res] {
	return Builder[Req, Res]{}
}

func (b Builder[Req, Res]) Layer(l Layer[Req, Res]) Builder[Req, Res] {
	layers := make([]Layer[Req, Res], 0, len(b.layers)+1)
	layers = append(layers, b.layers...)
	layers = append(layers, l)
	return Builder[Req, Res]{layers: layers}
}

// LayerIf adiciona l apenas quando cond é verdadeiro.
func (b Builder[Req, Res]) LayerIf(cond bool, l Layer[Req, Res]) Builder[Req, Res] {
	if !cond {
		return b
	}
	return b.Layer(l)
}

func (b Builder[Req, Res]) Service(s Service[Req, Res]) Service[Req, Res] {
	for i := len(b.layers) - 1; i >= 0; i-- {
		s = b.layers[i].Layer(s)
	}
	return s
}
