package service

// Códigos de erro do pipeline. Manter estáveis; usados por buffer e client.
const (
	ErrCodeServiceFailed = "service.failed"
	ErrCodeClosed        = "service.closed"
)

// Code devolve um erro que carrega apenas um código.
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	// ErrServiceFailed indica que o serviço embrulhado falhou em Ready de forma
	// irrecuperável; a instância fica permanentemente inutilizável.
	ErrServiceFailed = Code(ErrCodeServiceFailed)
	// ErrClosed indica que a instância foi encerrada explicitamente.
	ErrClosed = Code(ErrCodeClosed)
)
