package application

import (
	"context"
	"testing"
	"time"

	"service-pipeline/middleware/admission/domain"
)

type blockingPool struct{}

func (p *blockingPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return nil, false
	}
}

type immediatePool struct {
	acquired int
	released int
}

func (p *immediatePool) Acquire(ctx context.Context) (func(), bool) {
	p.acquired++
	return func() { p.released++ }, true
}

func TestSlotService_Acquire_AllowsWhenNoPool(t *testing.T) {
	svc := SlotService{}
	release, dec := svc.Acquire(context.Background())
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	release()
}

func TestSlotService_Acquire_UsesTimeout(t *testing.T) {
	svc := SlotService{Pool: &blockingPool{}, AcquireTimeout: 10 * time.Millisecond}

	release, dec := svc.Acquire(context.Background())
	if dec.Allowed {
		t.Fatalf("expected timeout and Allowed=false")
	}
	if dec.Reason != domain.ReasonNoSlot {
		t.Fatalf("expected reason %q, got %q", domain.ReasonNoSlot, dec.Reason)
	}
	// release de uma recusa é no-op
	release()
}

func TestSlotService_Acquire_RespectsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := SlotService{Pool: &blockingPool{}}
	if _, dec := svc.Acquire(ctx); dec.Allowed {
		t.Fatalf("expected canceled context to deny")
	}
}

func TestSlotService_Acquire_NoTimeoutDelegatesToPool(t *testing.T) {
	pool := &immediatePool{}
	svc := SlotService{Pool: pool}

	release, dec := svc.Acquire(context.Background())
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	release()
	if pool.acquired != 1 || pool.released != 1 {
		t.Fatalf("expected one acquire and one release, got %d/%d", pool.acquired, pool.released)
	}
}
