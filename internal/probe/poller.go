package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statusbot/internal/domain"
)

// Timeout is the fixed ceiling for a single status query. It does not depend
// on the poll interval.
const Timeout = 20 * time.Second

type Poller struct {
	Logger  *zap.Logger
	Querier Querier
	Host    string
	Port    uint16
	Timeout time.Duration
}

func NewPoller(logger *zap.Logger, q Querier, host string, port uint16) *Poller {
	return &Poller{
		Logger:  logger,
		Querier: q,
		Host:    host,
		Port:    port,
		Timeout: Timeout,
	}
}

type queryResult struct {
	players domain.Players
	err     error
}

// Poll issues one query and races it against the timeout. It never returns
// an error: every failure is folded into an unreachable outcome. There are no
// retries; the next cycle is the retry.
func (p *Poller) Poll(ctx context.Context) domain.Outcome {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = Timeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan queryResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- queryResult{err: fmt.Errorf("query panic: %v", r)}
			}
		}()
		players, err := p.Querier.Query(cctx, p.Host, p.Port)
		done <- queryResult{players: players, err: err}
	}()

	var res queryResult
	select {
	case res = <-done:
	case <-cctx.Done():
		// The querier may still be running; its result is dropped.
		if ctx.Err() != nil {
			res.err = ctx.Err()
		} else {
			res.err = fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
		}
	}
	latency := time.Since(start)

	if res.err != nil {
		kind := Classify(res.err)
		p.Logger.Warn("poll_failed",
			zap.String("host", p.Host),
			zap.Uint16("port", p.Port),
			zap.String("kind", string(kind)),
			zap.String("dns_class", DNSClass(res.err)),
			zap.Float64("latency_ms", latency.Seconds()*1000),
			zap.Error(res.err),
		)
		return domain.Unreachable(kind, res.err)
	}

	p.Logger.Info("poll_ok",
		zap.String("host", p.Host),
		zap.Uint16("port", p.Port),
		zap.Uint32("online", res.players.Online),
		zap.Uint32("max", res.players.Max),
		zap.Float64("latency_ms", latency.Seconds()*1000),
	)
	return domain.Reachable(res.players, latency)
}
