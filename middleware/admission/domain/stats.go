package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Origem do evento de decisão.
const (
	SourceAuthorization = "authorization"
	SourceRateLimit     = "ratelimit"
	SourceConcurrency   = "concurrency"
)

// StatsEvent representa uma decisão de admissão.
//
// Method/Path são strings genéricas; o evento não depende de net/http.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de séries/chaves em Redis/Postgres).
type StatsEvent struct {
	ID      uuid.UUID `json:"id"`
	Source  string    `json:"source"`
	Key     Key       `json:"key"`
	Allowed bool      `json:"allowed"`
	Reason  string    `json:"reason,omitempty"`

	Method string `json:"method"`
	Path   string `json:"path"`

	At time.Time `json:"at"`
}

// Outcome devolve "allowed" ou "denied".
func (e StatsEvent) Outcome() string {
	if e.Allowed {
		return "allowed"
	}
	return "denied"
}

// StatsStore é a estratégia de persistência das estatísticas de admissão.
//
// Implementações em memória, Redis, Postgres, NATS, Kafka e RabbitMQ ficam em infra.
// Quem chama deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
