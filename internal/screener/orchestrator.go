// Package screener runs stock screens against the service, on demand or on a
// fixed auto-refresh interval.
package screener

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"signal-dashboard/internal/clock"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/notify"
	"signal-dashboard/internal/render"
	"signal-dashboard/internal/results"
	"signal-dashboard/internal/store"
)

// DefaultRefreshInterval is the auto-refresh period.
const DefaultRefreshInterval = 180 * time.Second

// Client is the part of the API client the orchestrator needs.
type Client interface {
	Screen(ctx context.Context, req models.ScreenRequest) ([]models.ScreenerResult, error)
}

// Source supplies the current selection to auto-refresh runs.
type Source interface {
	Indicators() models.IndicatorSelection
	Timeframe() string
}

// View receives every applied screen.
type View interface {
	ShowScreener(view render.ScreenerView, refreshedAt time.Time)
}

// State is the auto-refresh state.
type State int

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Options configures an Orchestrator. Zero values get defaults.
type Options struct {
	View            View
	Journal         store.Journal
	Clock           clock.Clock
	Source          Source
	RefreshInterval time.Duration
	Logger          zerolog.Logger
}

// Orchestrator runs screens and owns the last screener results.
type Orchestrator struct {
	client   Client
	alerter  notify.Alerter
	view     View
	journal  store.Journal
	clock    clock.Clock
	source   Source
	interval time.Duration
	logger   zerolog.Logger
	results  *results.Container[[]models.ScreenerResult]

	mu            sync.Mutex
	state         State
	ticker        clock.Ticker
	stop          chan struct{}
	lastRefreshed time.Time

	wg conc.WaitGroup
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(client Client, alerter notify.Alerter, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	return &Orchestrator{
		client:   client,
		alerter:  alerter,
		view:     opts.View,
		journal:  opts.Journal,
		clock:    opts.Clock,
		source:   opts.Source,
		interval: opts.RefreshInterval,
		logger:   logging.WithOperation(opts.Logger, "screener"),
		results:  results.NewContainer[[]models.ScreenerResult](),
	}
}

// Results is the last-results container.
func (o *Orchestrator) Results() *results.Container[[]models.ScreenerResult] {
	return o.results
}

// Loading reports whether a screen is in flight.
func (o *Orchestrator) Loading() bool {
	return o.results.Loading()
}

// LastRefreshed is when results were last applied.
func (o *Orchestrator) LastRefreshed() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRefreshed, !o.lastRefreshed.IsZero()
}

// RunScreen screens with sel on timeframe. On failure the user is alerted,
// the error is returned, and the held results are left as they were.
func (o *Orchestrator) RunScreen(ctx context.Context, sel models.IndicatorSelection, timeframe string) error {
	gen := o.results.Begin()
	release := o.results.Track()
	defer release()

	logger := logging.WithGeneration(o.logger, uint64(gen))
	started := o.clock.Now()

	res, err := o.client.Screen(ctx, models.ScreenRequest{Indicators: sel, Timeframe: timeframe})
	if err != nil {
		o.finish(ctx, logger, gen, started, 0, false, err)
		if alertErr := o.alerter.Alert(ctx, notify.ErrorAlert("screener", err)); alertErr != nil {
			logger.Debug().Err(alertErr).Msg("Alert delivery failed")
		}
		return notify.Reported(err)
	}

	view := render.Screener(res)
	applied := o.results.Commit(gen, res)
	if applied {
		now := o.clock.Now()
		o.mu.Lock()
		o.lastRefreshed = now
		o.mu.Unlock()
		if o.view != nil {
			o.view.ShowScreener(view, now)
		}
	}

	o.finish(ctx, logger, gen, started, len(res), applied, nil)
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, logger zerolog.Logger, gen results.Generation, started time.Time, items int, applied bool, err error) {
	logging.LogRun(logger, string(store.KindScreen), uint64(gen), items, applied, err)
	if o.journal == nil {
		return
	}

	run := store.Run{
		Kind:       store.KindScreen,
		Generation: uint64(gen),
		StartedAt:  started,
		Duration:   o.clock.Now().Sub(started),
		Outcome:    store.OutcomeOf(applied, err),
		Items:      items,
	}
	if err != nil {
		run.Message = err.Error()
	}
	if recErr := o.journal.Record(context.WithoutCancel(ctx), run); recErr != nil {
		logger.Debug().Err(recErr).Msg("Failed to journal run")
	}
}

// State returns the auto-refresh state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetAutoRefresh turns polling on or off. Turning it on runs one screen
// immediately and then one per refresh interval; turning it off stops future
// runs without cancelling the ones in flight. Repeating the current state is
// a no-op.
func (o *Orchestrator) SetAutoRefresh(ctx context.Context, enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case enabled && o.state == Idle:
		o.state = Polling
		o.ticker = o.clock.NewTicker(o.interval)
		o.stop = make(chan struct{})
		o.logger.Info().Dur("interval", o.interval).Msg("Auto refresh enabled")

		o.wg.Go(func() { o.autoRun(ctx) })
		ticker, stop := o.ticker, o.stop
		o.wg.Go(func() { o.poll(ctx, ticker, stop) })

	case !enabled && o.state == Polling:
		o.stopLocked()
		o.logger.Info().Msg("Auto refresh disabled")
	}
}

func (o *Orchestrator) stopLocked() {
	o.state = Idle
	o.ticker.Stop()
	close(o.stop)
	o.ticker, o.stop = nil, nil
}

func (o *Orchestrator) poll(ctx context.Context, ticker clock.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C():
			o.wg.Go(func() { o.autoRun(ctx) })
		case <-stop:
			return
		case <-ctx.Done():
			o.mu.Lock()
			if o.stop == stop {
				o.stopLocked()
			}
			o.mu.Unlock()
			return
		}
	}
}

func (o *Orchestrator) autoRun(ctx context.Context) {
	if o.source == nil {
		return
	}
	// Errors were already surfaced by RunScreen.
	_ = o.RunScreen(ctx, o.source.Indicators(), o.source.Timeframe())
}

// Wait blocks until polling has stopped and every run has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
