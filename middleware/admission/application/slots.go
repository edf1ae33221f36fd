package application

import (
	"context"
	"time"

	"service-pipeline/middleware/admission/domain"
)

// SlotService concentra a regra de aquisição/liberação de vagas com timeout,
// sem saber nada sobre HTTP.
type SlotService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - Se AcquireTimeout <= 0, espera indefinidamente (até ctx cancelar).
//   - Se AcquireTimeout > 0, espera até o timeout.
//
// Retorna (release, decision). Se decision.Allowed=false, nenhuma vaga foi adquirida
// e release é um no-op.
func (s SlotService) Acquire(ctx context.Context) (func(), domain.Decision) {
	if s.Pool == nil {
		return func() {}, domain.Decision{Allowed: true}
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok {
		return func() {}, domain.Decision{Allowed: false, Reason: domain.ReasonNoSlot}
	}
	return release, domain.Decision{Allowed: true}
}
