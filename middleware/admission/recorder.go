package admission

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"service-pipeline/middleware/admission/domain"

	"github.com/google/uuid"
)

// Recorder registra decisões num StatsStore. Erros são best-effort: viram log
// de aviso e nunca derrubam a requisição. O zero value (sem Store) é um no-op.
type Recorder struct {
	Store  domain.StatsStore
	Source string
	KeyFn  KeyFunc
	Logger *slog.Logger
	Now    func() time.Time
}

func (rec Recorder) Record(ctx context.Context, r *http.Request, dec domain.Decision) {
	if rec.Store == nil {
		return
	}

	keyFn := rec.KeyFn
	if keyFn == nil {
		keyFn = DefaultKeyFunc("", false)
	}
	now := time.Now
	if rec.Now != nil {
		now = rec.Now
	}

	ev := domain.StatsEvent{
		ID:      uuid.New(),
		Source:  rec.Source,
		Key:     domain.Key(keyFn(r)),
		Allowed: dec.Allowed,
		Reason:  dec.Reason,
		Method:  r.Method,
		At:      now(),
	}
	if r.URL != nil {
		ev.Path = r.URL.Path
	}

	if err := rec.Store.Record(ctx, ev); err != nil {
		logger := rec.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("record admission decision",
			"event", "admission_stats_failed",
			"source", rec.Source,
			"allowed", dec.Allowed,
			"error", err.Error(),
		)
	}
}
