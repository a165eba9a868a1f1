// Package strategy mirrors the local indicator selection to the service's
// shared strategy configuration.
package strategy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/selection"
)

// Updater is the part of the API client the syncer needs.
type Updater interface {
	UpdateStrategy(ctx context.Context, req models.StrategyRequest) error
}

// Syncer pushes every selection change to the service without waiting for
// or acting on the outcome. Failures are logged and counted, never returned.
type Syncer struct {
	updater  Updater
	logger   zerolog.Logger
	timeout  time.Duration
	wg       conc.WaitGroup
	pushed   atomic.Int64
	failures atomic.Int64
}

// NewSyncer creates a Syncer. A zero timeout leaves pushes unbounded.
func NewSyncer(updater Updater, logger zerolog.Logger, timeout time.Duration) *Syncer {
	return &Syncer{
		updater: updater,
		logger:  logging.WithOperation(logger, "strategy_sync"),
		timeout: timeout,
	}
}

// Push sends sel in the background and returns immediately.
func (s *Syncer) Push(ctx context.Context, sel models.IndicatorSelection) {
	// Detached from the caller's cancellation: a push outlives the
	// interaction that caused it.
	base := context.WithoutCancel(ctx)

	s.wg.Go(func() {
		pushCtx := base
		if s.timeout > 0 {
			var cancel context.CancelFunc
			pushCtx, cancel = context.WithTimeout(base, s.timeout)
			defer cancel()
		}

		s.pushed.Add(1)
		if err := s.updater.UpdateStrategy(pushCtx, models.StrategyRequest{Indicators: sel}); err != nil {
			s.failures.Add(1)
			s.logger.Warn().
				Err(err).
				Strs("active", sel.Active()).
				Int64("failures", s.failures.Load()).
				Msg("Strategy sync failed")
			return
		}
		s.logger.Debug().Strs("active", sel.Active()).Msg("Strategy synced")
	})
}

// Attach pushes every indicator change made on state.
func (s *Syncer) Attach(ctx context.Context, state *selection.State) {
	state.OnIndicatorsChange(func(sel models.IndicatorSelection) {
		s.Push(ctx, sel)
	})
}

// Wait blocks until in-flight pushes finish.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Stats returns how many pushes were attempted and how many failed.
func (s *Syncer) Stats() (pushed, failed int64) {
	return s.pushed.Load(), s.failures.Load()
}
