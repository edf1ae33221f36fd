package infra

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"service-pipeline/middleware/admission/domain"

	"golang.org/x/time/rate"
)

// DefaultIdlePolicy esquece chaves paradas há 15 minutos, varrendo a cada 2.
var DefaultIdlePolicy = domain.IdlePolicy{TTL: 15 * time.Minute, SweepEvery: 2 * time.Minute}

// BucketStore guarda um token bucket (x/time/rate) por chave de admissão e
// esquece as chaves que a IdlePolicy considera expiradas.
type BucketStore struct {
	limit  rate.Limit
	burst  int
	policy domain.IdlePolicy
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	buckets map[domain.Key]*bucket
}

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

var _ domain.LimiterStore = (*BucketStore)(nil)

type BucketOption func(*BucketStore)

func WithIdlePolicy(p domain.IdlePolicy) BucketOption {
	return func(s *BucketStore) { s.policy = p }
}

func WithBucketLogger(logger *slog.Logger) BucketOption {
	return func(s *BucketStore) { s.logger = logger }
}

// NewBucketStore cria buckets de rps fichas por segundo com capacidade burst.
func NewBucketStore(rps float64, burst int, opts ...BucketOption) *BucketStore {
	s := &BucketStore{
		limit:   rate.Limit(rps),
		burst:   burst,
		policy:  DefaultIdlePolicy,
		now:     time.Now,
		buckets: make(map[domain.Key]*bucket),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *BucketStore) RPS() float64              { return float64(s.limit) }
func (s *BucketStore) Burst() int                { return s.burst }
func (s *BucketStore) Policy() domain.IdlePolicy { return s.policy }

// Len devolve quantas chaves têm bucket.
func (s *BucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Get implementa domain.LimiterStore. Cada Get conta como atividade da chave.
func (s *BucketStore) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.Limiter
}

// Sweep remove as chaves expiradas e devolve quantas saíram.
func (s *BucketStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, b := range s.buckets {
		if s.policy.Expired(b.lastSeen, now) {
			delete(s.buckets, key)
			evicted++
		}
	}
	return evicted
}

// Run varre as chaves a cada policy.SweepEvery até o ctx encerrar.
// Bloqueia; rode em goroutine (ou errgroup).
func (s *BucketStore) Run(ctx context.Context) error {
	if s.policy.SweepEvery <= 0 || s.policy.TTL <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(s.policy.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("idle limiter keys evicted",
					"event", "limiter_keys_evicted",
					"evicted", n,
					"remaining", s.Len(),
				)
			}
		}
	}
}
