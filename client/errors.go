package client

import (
	"errors"

	"service-pipeline/service"
)

// Kind classifica a origem de um Error.
type Kind uint8

const (
	// KindURL: rota inválida ou não resolvível contra a URL base.
	KindURL Kind = iota + 1
	// KindRequest: falha ao montar a requisição.
	KindRequest
	// KindService: erro do serviço ou do transport.
	KindService
	// KindQueue: buffer inutilizável (serviço falhou ou cliente fechado).
	KindQueue
	// KindBody: falha ao ler o corpo da resposta.
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindRequest:
		return "request"
	case KindService:
		return "service"
	case KindQueue:
		return "queue"
	case KindBody:
		return "body"
	default:
		return "unknown"
	}
}

// Error é o erro devolvido por todas as operações do Client.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return "client: " + e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, op string, err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// serviceErr separa falha da fila de erro comum do serviço.
func serviceErr(op string, err error) error {
	if errors.Is(err, service.ErrServiceFailed) || errors.Is(err, service.ErrClosed) {
		return wrap(KindQueue, op, err)
	}
	return wrap(KindService, op, err)
}

// IsKind informa se err é um *Error do tipo kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
