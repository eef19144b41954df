package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statusbot/internal/domain"
	"github.com/hamed0406/statusbot/internal/format"
	"github.com/hamed0406/statusbot/internal/metrics"
)

type Poller interface {
	Poll(ctx context.Context) domain.Outcome
}

type Updater interface {
	Update(ctx context.Context, name string) error
}

// Loop runs poll -> format -> update -> sleep until ctx is cancelled.
// Cycles never overlap and no failure inside a cycle stops the loop.
type Loop struct {
	Logger    *zap.Logger
	Poller    Poller
	Updater   Updater
	Templates format.Templates
	Interval  time.Duration
}

func NewLoop(
	logger *zap.Logger,
	p Poller,
	u Updater,
	templates format.Templates,
	interval time.Duration,
) *Loop {
	return &Loop{
		Logger:    logger,
		Poller:    p,
		Updater:   u,
		Templates: templates,
		Interval:  interval,
	}
}

// Run does an immediate cycle, then sleeps the full interval after each one.
// The sleep starts only once the update attempt has resolved, so cycle starts
// are at least Interval apart.
func (l *Loop) Run(ctx context.Context) {
	if l.Interval <= 0 {
		l.Logger.Error("loop_disabled", zap.Duration("interval", l.Interval))
		return
	}
	l.Logger.Info("loop_started", zap.Duration("interval", l.Interval))

	for {
		l.runOnce(ctx)

		t := time.NewTimer(l.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			l.Logger.Info("loop_stopped")
			return
		case <-t.C:
		}
	}
}

func (l *Loop) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.Logger.Error("cycle_panic", zap.Any("panic", r))
		}
	}()
	start := time.Now()

	outcome := l.Poller.Poll(ctx)
	if ctx.Err() != nil {
		// shutting down; don't publish an offline name for our own cancellation
		return
	}
	metrics.ObservePoll(outcome)

	name := format.Format(outcome, l.Templates)

	updated := true
	if err := l.Updater.Update(ctx, name); err != nil {
		updated = false
		metrics.UpdateFailures.Inc()
	}
	metrics.Cycles.Inc()

	l.Logger.Debug("cycle_done",
		zap.Bool("reachable", outcome.Reachable),
		zap.String("kind", string(outcome.Kind)),
		zap.String("name", name),
		zap.Bool("updated", updated),
		zap.Duration("took", time.Since(start)),
	)
}
