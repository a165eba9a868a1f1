// Package selection holds the user's current dashboard selections.
package selection

import (
	"fmt"
	"sync"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/timeframe"
)

// IndicatorsListener is called with the full selection after it changes.
type IndicatorsListener func(models.IndicatorSelection)

// State is the mutable selection of one dashboard session.
type State struct {
	mu         sync.RWMutex
	indicators models.IndicatorSelection
	timeframe  string
	stock      string
	interval   string
	period     string
	params     models.BacktestParams
	listeners  []IndicatorsListener
}

// Options seeds a State.
type Options struct {
	Indicators models.IndicatorSelection
	Timeframe  string
	Stock      string
	Interval   string
	Period     string
	Params     models.BacktestParams
}

// New creates a State. An empty period is replaced by the resolver's default
// for the interval.
func New(opts Options) (*State, error) {
	if !timeframe.IsInterval(opts.Timeframe) {
		return nil, apperrors.NewConfigurationError("timeframe", fmt.Sprintf("unknown timeframe %q", opts.Timeframe))
	}
	res, err := timeframe.Resolve(opts.Interval)
	if err != nil {
		return nil, err
	}
	period := opts.Period
	if period == "" {
		period = res.DefaultKey()
	} else if !res.Contains(period) {
		return nil, timeframe.Validate(opts.Interval, period)
	}

	return &State{
		indicators: opts.Indicators,
		timeframe:  opts.Timeframe,
		stock:      opts.Stock,
		interval:   opts.Interval,
		period:     period,
		params:     opts.Params,
	}, nil
}

// OnIndicatorsChange registers a listener for indicator changes.
func (s *State) OnIndicatorsChange(fn IndicatorsListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Indicators returns a copy of the current indicator selection.
func (s *State) Indicators() models.IndicatorSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indicators
}

// SetIndicator toggles one indicator and notifies listeners if it changed.
func (s *State) SetIndicator(name string, on bool) error {
	s.mu.Lock()
	next := s.indicators
	if err := next.Set(name, on); err != nil {
		s.mu.Unlock()
		return err
	}
	s.swapIndicatorsLocked(next, false)
	return nil
}

// SetIndicators replaces the whole selection and notifies listeners if it
// changed.
func (s *State) SetIndicators(sel models.IndicatorSelection) {
	s.mu.Lock()
	s.swapIndicatorsLocked(sel, false)
}

// PublishIndicators replaces the whole selection and notifies listeners even
// when it is unchanged.
func (s *State) PublishIndicators(sel models.IndicatorSelection) {
	s.mu.Lock()
	s.swapIndicatorsLocked(sel, true)
}

// swapIndicatorsLocked is entered with s.mu held and releases it before
// calling listeners.
func (s *State) swapIndicatorsLocked(next models.IndicatorSelection, force bool) {
	changed := next != s.indicators
	s.indicators = next
	listeners := append([]IndicatorsListener(nil), s.listeners...)
	s.mu.Unlock()

	if !changed && !force {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}

// Timeframe returns the screener timeframe.
func (s *State) Timeframe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeframe
}

// SetTimeframe sets the screener timeframe.
func (s *State) SetTimeframe(tf string) error {
	if !timeframe.IsInterval(tf) {
		return apperrors.NewConfigurationError("timeframe", fmt.Sprintf("unknown timeframe %q", tf))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeframe = tf
	return nil
}

// Live returns the live-fetch backtest selectors.
func (s *State) Live() (stock, period, interval string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock, s.period, s.interval
}

// SetStock sets the backtest symbol.
func (s *State) SetStock(stock string) error {
	if stock == "" {
		return apperrors.NewValidationError("stock", stock, "stock symbol is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = stock
	return nil
}

// SetInterval changes the backtest interval and resets the period to the
// interval's default. It returns the resolution so callers can show the
// choices and warning.
func (s *State) SetInterval(interval string) (timeframe.Resolution, error) {
	res, err := timeframe.Resolve(interval)
	if err != nil {
		return timeframe.Resolution{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.period = res.DefaultKey()
	return res, nil
}

// SetPeriod sets the backtest period if it is valid for the interval.
func (s *State) SetPeriod(period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := timeframe.Validate(s.interval, period); err != nil {
		return err
	}
	s.period = period
	return nil
}

// Params returns the backtest parameters.
func (s *State) Params() models.BacktestParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the backtest parameters.
func (s *State) SetParams(p models.BacktestParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}
