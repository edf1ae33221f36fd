package domain

import "time"

type Key string

// Limiter decide se uma ação é permitida agora.
//
// A implementação pode ser token-bucket, leaky-bucket, etc.
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
type LimiterStore interface {
	Get(Key) Limiter
}

// Decision é o resultado de uma decisão de admissão.
type Decision struct {
	Allowed bool
	// Reason explica a recusa (vazio quando Allowed).
	Reason string
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// Motivos de recusa registrados nos eventos.
const (
	ReasonRateLimited        = "rate_limited"
	ReasonNoSlot             = "no_slot"
	ReasonMissingCredentials = "missing_credentials"
	ReasonInvalidCredentials = "invalid_credentials"
)

// IdlePolicy decide quando o limiter de uma chave inativa pode ser esquecido.
// Esquecer uma chave devolve o bucket dela ao estado cheio.
type IdlePolicy struct {
	// TTL <= 0 mantém as chaves para sempre.
	TTL time.Duration
	// SweepEvery é o intervalo da varredura. <= 0 desliga a varredura.
	SweepEvery time.Duration
}

// Expired informa se uma chave vista pela última vez em lastSeen já pode sair.
func (p IdlePolicy) Expired(lastSeen, now time.Time) bool {
	return p.TTL > 0 && now.Sub(lastSeen) >= p.TTL
}
