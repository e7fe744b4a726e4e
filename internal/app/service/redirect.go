package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/storage"
	"github.com/emirkoc/shortlink/internal/worker"
)

// Outcome is the redirect decision for an incoming code.
type Outcome int

const (
	// OutcomeRedirect allows the visit; Resolution.Target carries the URL.
	OutcomeRedirect Outcome = iota
	// OutcomeNotFound means no record matches the code.
	OutcomeNotFound
	// OutcomeInactive means the record exists but was deactivated.
	OutcomeInactive
	// OutcomeExpired means the record exists but its expiry has passed.
	OutcomeExpired
)

// Resolution is the result of resolving one visit.
type Resolution struct {
	Outcome Outcome
	Target  string
}

// RedirectResolver decides allow/deny for incoming visits and hands allowed
// ones to the click worker. Recording runs behind the redirect response: a
// full queue or a failed write never turns a valid redirect into an error.
type RedirectResolver struct {
	store  RedirectStore
	ch     chan<- worker.ClickTask
	logger *zap.Logger
	now    func() time.Time
}

// NewRedirectResolver starts the click worker and wires the resolver to it.
func NewRedirectResolver(store RedirectStore, recorder worker.Recorder, logger *zap.Logger) *RedirectResolver {
	w := worker.NewClickTaskWorker(logger, recorder)
	go w.Run()

	return &RedirectResolver{
		store:  store,
		ch:     w.GetInChannel(),
		logger: logger,
		now:    time.Now,
	}
}

// Resolve looks the code up, applies the active/expiry policy and, when the
// visit is allowed, enqueues it for recording.
func (r *RedirectResolver) Resolve(ctx context.Context, code, ip, userAgent, referer string) (Resolution, error) {
	record, err := r.store.FindByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return Resolution{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return Resolution{}, err
	}

	if !record.IsActive {
		return Resolution{Outcome: OutcomeInactive}, nil
	}
	if record.ExpiresAt != nil && !record.ExpiresAt.After(r.now()) {
		return Resolution{Outcome: OutcomeExpired}, nil
	}

	task := worker.ClickTask{
		URLID:     record.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		Referer:   referer,
	}
	select {
	case r.ch <- task:
	default:
		r.logger.Warn("click queue full, dropping visit", zap.String("url_id", record.ID))
	}

	return Resolution{Outcome: OutcomeRedirect, Target: record.OriginalURL}, nil
}
