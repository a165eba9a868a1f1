// Package backtest runs strategy backtests on the service, either on data it
// fetches itself or on an uploaded historical data file.
package backtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"signal-dashboard/internal/clock"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/notify"
	"signal-dashboard/internal/render"
	"signal-dashboard/internal/results"
	"signal-dashboard/internal/store"
	"signal-dashboard/internal/timeframe"
)

// Source selects where the backtest data comes from.
type Source string

const (
	SourceLive   Source = "live"
	SourceUpload Source = "upload"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceLive, SourceUpload:
		return Source(s), nil
	}
	return "", apperrors.NewValidationError("source", s, fmt.Sprintf("unknown data source %q (want live or upload)", s))
}

// Live identifies the data the service fetches for a live run.
type Live struct {
	Stock    string
	Period   string
	Interval string
}

// Input is one backtest request as the user composed it.
type Input struct {
	Source       Source
	Params       models.BacktestParams
	Live         Live
	File         []byte
	FileProvided bool
}

// Client is the part of the API client the orchestrator needs.
type Client interface {
	Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error)
}

// View receives every applied backtest.
type View interface {
	ShowBacktest(view render.BacktestView, result models.BacktestResult)
}

// Options configures an Orchestrator.
type Options struct {
	View    View
	Journal store.Journal
	Clock   clock.Clock
	Logger  zerolog.Logger
}

// Orchestrator runs backtests and owns the last backtest result.
type Orchestrator struct {
	client  Client
	alerter notify.Alerter
	view    View
	journal store.Journal
	clock   clock.Clock
	logger  zerolog.Logger
	results *results.Container[models.BacktestResult]
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(client Client, alerter notify.Alerter, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	return &Orchestrator{
		client:  client,
		alerter: alerter,
		view:    opts.View,
		journal: opts.Journal,
		clock:   opts.Clock,
		logger:  logging.WithOperation(opts.Logger, "backtest"),
		results: results.NewContainer[models.BacktestResult](),
	}
}

// Results is the last-backtest container.
func (o *Orchestrator) Results() *results.Container[models.BacktestResult] {
	return o.results
}

// Loading reports whether a backtest is in flight.
func (o *Orchestrator) Loading() bool {
	return o.results.Loading()
}

// BuildRequest turns in into the request body. Upload runs without a file and
// live runs with an interval/period pair the service cannot serve are
// rejected here.
func BuildRequest(in Input) (models.BacktestRequest, error) {
	switch in.Source {
	case SourceUpload:
		if !in.FileProvided {
			return models.BacktestRequest{}, apperrors.NewMissingInputError("file", "Please select a CSV file")
		}
		params := in.Params
		params.Interval = ""
		data := string(in.File)
		return models.BacktestRequest{Params: params, CSVData: &data}, nil

	case SourceLive:
		if in.Live.Stock == "" {
			return models.BacktestRequest{}, apperrors.NewMissingInputError("stock", "Please select a stock")
		}
		if err := timeframe.Validate(in.Live.Interval, in.Live.Period); err != nil {
			return models.BacktestRequest{}, err
		}
		params := in.Params
		params.Interval = in.Live.Interval
		return models.BacktestRequest{
			Params:   params,
			Stock:    in.Live.Stock,
			Period:   in.Live.Period,
			Interval: in.Live.Interval,
		}, nil
	}

	_, err := ParseSource(string(in.Source))
	return models.BacktestRequest{}, err
}

// RunBacktest runs in. Every failure, including rejected input, is alerted
// once and returned; the held result is only replaced on success.
func (o *Orchestrator) RunBacktest(ctx context.Context, in Input) error {
	req, err := BuildRequest(in)
	if err != nil {
		o.logger.Debug().Err(err).Str("source", string(in.Source)).Msg("Backtest input rejected")
		o.alert(ctx, err)
		return notify.Reported(err)
	}

	gen := o.results.Begin()
	release := o.results.Track()
	defer release()

	logger := logging.WithGeneration(o.logger, uint64(gen)).With().Str("source", string(in.Source)).Logger()
	started := o.clock.Now()

	res, err := o.client.Backtest(ctx, req)
	if err != nil {
		o.finish(ctx, logger, gen, started, 0, false, err)
		o.alert(ctx, err)
		return notify.Reported(err)
	}

	if cerr := res.CheckCumulative(0.01); cerr != nil {
		logger.Warn().Err(cerr).Msg("Cumulative P&L does not match trade P&L")
	}

	applied := o.results.Commit(gen, *res)
	if applied && o.view != nil {
		o.view.ShowBacktest(render.Backtest(*res), *res)
	}

	o.finish(ctx, logger, gen, started, len(res.Trades), applied, nil)
	return nil
}

func (o *Orchestrator) alert(ctx context.Context, err error) {
	if alertErr := o.alerter.Alert(ctx, notify.ErrorAlert("backtest", err)); alertErr != nil {
		o.logger.Debug().Err(alertErr).Msg("Alert delivery failed")
	}
}

func (o *Orchestrator) finish(ctx context.Context, logger zerolog.Logger, gen results.Generation, started time.Time, items int, applied bool, err error) {
	logging.LogRun(logger, string(store.KindBacktest), uint64(gen), items, applied, err)
	if o.journal == nil {
		return
	}

	run := store.Run{
		Kind:       store.KindBacktest,
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

// LoadFile reads an uploaded historical data file.
func LoadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, apperrors.NewMissingInputError("file", "Please select a CSV file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewValidationError("file", path, fmt.Sprintf("cannot read %s: %v", path, err))
	}
	return data, nil
}
