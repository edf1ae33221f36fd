package infra

import (
	"context"
	"sync"

	"service-pipeline/middleware/admission/domain"
)

// ChanPool é um semáforo baseado em channel com capacidade fixa.
type ChanPool struct {
	sem chan struct{}
}

var _ domain.SlotPool = (*ChanPool)(nil)

// NewChanPool cria um pool com capacidade `max`. max <= 0 entra em pânico:
// é erro de configuração.
func NewChanPool(max int) *ChanPool {
	if max <= 0 {
		panic("infra: chan pool capacity must be greater than zero")
	}
	return &ChanPool{sem: make(chan struct{}, max)}
}

// Acquire prefere uma vaga livre mesmo com ctx já encerrado; só desiste quando
// o pool está cheio.
func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return p.releaseFunc(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *ChanPool) releaseFunc() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }
}

// InUse devolve quantas vagas estão ocupadas.
func (p *ChanPool) InUse() int { return len(p.sem) }

// Cap devolve a capacidade total.
func (p *ChanPool) Cap() int { return cap(p.sem) }
