// Package export writes screener and backtest results to CSV downloads.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"signal-dashboard/internal/clock"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/notify"
	"signal-dashboard/internal/results"
	"signal-dashboard/internal/store"
)

// Client is the part of the API client the exporter needs.
type Client interface {
	ExportCSV(ctx context.Context, req models.ExportRequest) (io.ReadCloser, error)
}

// Held is a last-results container.
type Held[T any] interface {
	Latest() (results.Snapshot[T], bool)
}

// Options configures an Exporter.
type Options struct {
	Journal store.Journal
	Clock   clock.Clock
	Logger  zerolog.Logger
}

// Exporter turns held results into downloads.
type Exporter struct {
	client    Client
	screener  Held[[]models.ScreenerResult]
	backtests Held[models.BacktestResult]
	sink      Sink
	alerter   notify.Alerter
	journal   store.Journal
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewExporter creates an Exporter reading the given containers.
func NewExporter(client Client, screener Held[[]models.ScreenerResult], backtests Held[models.BacktestResult], sink Sink, alerter notify.Alerter, opts Options) *Exporter {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	return &Exporter{
		client:    client,
		screener:  screener,
		backtests: backtests,
		sink:      sink,
		alerter:   alerter,
		journal:   opts.Journal,
		clock:     opts.Clock,
		logger:    logging.WithOperation(opts.Logger, "export"),
	}
}

// ScreenerFileName is the download name for a screener export made at t.
func ScreenerFileName(t time.Time) string {
	return fmt.Sprintf("stock_screening_%d.csv", t.UnixMilli())
}

// BacktestFileName is the download name for a trade export made at t.
func BacktestFileName(t time.Time) string {
	return fmt.Sprintf("backtest_trades_%d.csv", t.UnixMilli())
}

// ExportScreener sends the held screener results to the export endpoint and
// saves the CSV it returns. It returns where the file was saved.
func (e *Exporter) ExportScreener(ctx context.Context) (string, error) {
	started := e.clock.Now()

	snap, ok := e.screener.Latest()
	if !ok || len(snap.Data) == 0 {
		return "", e.fail(ctx, started, 0, apperrors.NewEmptyStateError("screener results", "No results to export. Please run the screener first."))
	}

	body, err := e.client.ExportCSV(ctx, models.ExportRequest{Results: snap.Data})
	if err != nil {
		return "", e.fail(ctx, started, 0, err)
	}
	defer body.Close()

	path, err := e.sink.Save(ScreenerFileName(e.clock.Now()), body)
	if err != nil {
		return "", e.fail(ctx, started, 0, err)
	}

	e.done(ctx, started, len(snap.Data), path)
	return path, nil
}

// ExportBacktest writes the held backtest's trades as CSV. It sends nothing
// to the service.
func (e *Exporter) ExportBacktest(ctx context.Context) (string, error) {
	started := e.clock.Now()

	snap, ok := e.backtests.Latest()
	if !ok || len(snap.Data.Trades) == 0 {
		return "", e.fail(ctx, started, 0, apperrors.NewEmptyStateError("backtest trades", "No trades to export"))
	}

	data, err := TradesCSV(snap.Data.Trades)
	if err != nil {
		return "", e.fail(ctx, started, 0, err)
	}

	path, err := e.sink.SaveBytes(BacktestFileName(e.clock.Now()), data)
	if err != nil {
		return "", e.fail(ctx, started, 0, err)
	}

	e.done(ctx, started, len(snap.Data.Trades), path)
	return path, nil
}

func (e *Exporter) fail(ctx context.Context, started time.Time, items int, err error) error {
	logging.LogRun(e.logger, string(store.KindExport), 0, items, false, err)
	e.record(ctx, started, items, err)
	if alertErr := e.alerter.Alert(ctx, notify.ErrorAlert("export", err)); alertErr != nil {
		e.logger.Debug().Err(alertErr).Msg("Alert delivery failed")
	}
	return notify.Reported(err)
}

func (e *Exporter) done(ctx context.Context, started time.Time, items int, path string) {
	e.logger.Info().Str("path", path).Int("items", items).Msg("Export saved")
	e.record(ctx, started, items, nil)
}

func (e *Exporter) record(ctx context.Context, started time.Time, items int, err error) {
	if e.journal == nil {
		return
	}
	run := store.Run{
		Kind:      store.KindExport,
		StartedAt: started,
		Duration:  e.clock.Now().Sub(started),
		Outcome:   store.OutcomeOf(err == nil, err),
		Items:     items,
	}
	if err != nil {
		run.Message = err.Error()
	}
	if recErr := e.journal.Record(context.WithoutCancel(ctx), run); recErr != nil {
		e.logger.Debug().Err(recErr).Msg("Failed to journal export")
	}
}
