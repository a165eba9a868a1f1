package backtest

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"signal-dashboard/internal/api"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/notify"
	"signal-dashboard/internal/render"
)

type fakeClient struct {
	requests []models.BacktestRequest
	result   *models.BacktestResult
	err      error
}

func (f *fakeClient) Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordingView struct {
	views []render.BacktestView
}

func (r *recordingView) ShowBacktest(v render.BacktestView, _ models.BacktestResult) {
	r.views = append(r.views, v)
}

var oneTrade = &models.BacktestResult{
	InitialCapital: 100000,
	FinalCapital:   100008,
	TotalTrades:    1,
	Trades: []models.Trade{
		{EntryTime: "t1", Position: models.PositionLong, Entry: 100, SL: 95, TP: 110, ExitTime: "t2", Exit: 108, Reason: models.ExitTakeProfit, PnL: 8, CumulativePnL: 8},
	},
}

func newTestOrchestrator(client Client) (*Orchestrator, *notify.Recorder, *recordingView) {
	rec := &notify.Recorder{}
	view := &recordingView{}
	return NewOrchestrator(client, rec, Options{View: view, Logger: zerolog.Nop()}), rec, view
}

func TestUploadWithoutFileSendsNothing(t *testing.T) {
	client := &fakeClient{result: oneTrade}
	o, rec, _ := newTestOrchestrator(client)

	err := o.RunBacktest(context.Background(), Input{Source: SourceUpload, Params: models.DefaultBacktestParams()})
	if !errors.Is(err, apperrors.ErrMissingInput) {
		t.Fatalf("expected missing input error, got %v", err)
	}
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %T", err)
	}
	if len(client.requests) != 0 {
		t.Errorf("no request should be sent, got %d", len(client.requests))
	}
	if alerts := rec.Alerts(); len(alerts) != 1 || alerts[0].Message != "Please select a CSV file" {
		t.Errorf("alerts = %+v", alerts)
	}
	if o.Loading() {
		t.Error("loading flag set for rejected input")
	}
}

func TestUploadRequestBody(t *testing.T) {
	req, err := BuildRequest(Input{
		Source:       SourceUpload,
		Params:       models.DefaultBacktestParams(),
		File:         []byte("Date,Open,High,Low,Close,Volume\n"),
		FileProvided: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["csv_data"] != "Date,Open,High,Low,Close,Volume\n" {
		t.Errorf("csv_data = %v", decoded["csv_data"])
	}
	for _, key := range []string{"stock", "period", "interval"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("upload body must not carry %q", key)
		}
	}
	if _, ok := decoded["params"].(map[string]interface{})["interval"]; ok {
		t.Error("upload params must not carry interval")
	}
}

func TestEmptyUploadIsStillSent(t *testing.T) {
	req, err := BuildRequest(Input{Source: SourceUpload, FileProvided: true})
	if err != nil {
		t.Fatalf("an empty but provided file should be sent: %v", err)
	}
	if req.CSVData == nil || *req.CSVData != "" {
		t.Errorf("csv_data = %v", req.CSVData)
	}
}

func TestLiveRequestBody(t *testing.T) {
	client := &fakeClient{result: oneTrade}
	o, _, view := newTestOrchestrator(client)

	in := Input{
		Source: SourceLive,
		Params: models.DefaultBacktestParams(),
		Live:   Live{Stock: "RELIANCE.NS", Period: "6mo", Interval: "1h"},
	}
	if err := o.RunBacktest(context.Background(), in); err != nil {
		t.Fatalf("RunBacktest: %v", err)
	}

	got := client.requests[0]
	if got.Stock != "RELIANCE.NS" || got.Period != "6mo" || got.Interval != "1h" || got.Params.Interval != "1h" {
		t.Errorf("request = %+v", got)
	}
	if got.CSVData != nil {
		t.Error("live request must not carry csv_data")
	}

	snap, ok := o.Results().Latest()
	if !ok || snap.Data.FinalCapital != 100008 {
		t.Errorf("result not applied: %+v", snap)
	}
	if len(view.views) != 1 || len(view.views[0].Rows) != 1 {
		t.Errorf("view = %+v", view.views)
	}
}

func TestLivePeriodBeyondIntervalLimit(t *testing.T) {
	client := &fakeClient{result: oneTrade}
	o, rec, _ := newTestOrchestrator(client)

	err := o.RunBacktest(context.Background(), Input{
		Source: SourceLive,
		Live:   Live{Stock: "TCS.NS", Period: "1y", Interval: "5m"},
	})
	if !errors.Is(err, apperrors.ErrInputValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(client.requests) != 0 {
		t.Error("no request should be sent")
	}
	if len(rec.Alerts()) != 1 {
		t.Errorf("alerts = %+v", rec.Alerts())
	}
}

func TestFailureKeepsPriorResult(t *testing.T) {
	client := &fakeClient{result: oneTrade}
	o, rec, view := newTestOrchestrator(client)
	in := Input{Source: SourceLive, Params: models.DefaultBacktestParams(), Live: Live{Stock: "INFY.NS", Period: "1y", Interval: "1d"}}

	if err := o.RunBacktest(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	client.err = apperrors.NewApplicationError(api.PathBacktest, 200, "No data found")
	if err := o.RunBacktest(context.Background(), in); !errors.Is(err, apperrors.ErrRequestFailed) {
		t.Fatalf("expected application error, got %v", err)
	}

	snap, _ := o.Results().Latest()
	if snap.Generation != 1 {
		t.Errorf("prior result replaced: generation %d", snap.Generation)
	}
	if alerts := rec.Alerts(); len(alerts) != 1 || alerts[0].Message != "Error: No data found" {
		t.Errorf("alerts = %+v", alerts)
	}
	if len(view.views) != 1 {
		t.Errorf("failed run must not reach the view")
	}
	if o.Loading() {
		t.Error("loading flag left set")
	}
}

func TestParseSource(t *testing.T) {
	if s, err := ParseSource("upload"); err != nil || s != SourceUpload {
		t.Errorf("ParseSource(upload) = %q, %v", s, err)
	}
	if _, err := ParseSource("yahoo"); !errors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("Date,Close\n2024-01-01,100\n"), 0600); err != nil {
		t.Fatal(err)
	}

	data, err := LoadFile(path)
	if err != nil || string(data) != "Date,Close\n2024-01-01,100\n" {
		t.Errorf("LoadFile = %q, %v", data, err)
	}
	if _, err := LoadFile(""); !errors.Is(err, apperrors.ErrMissingInput) {
		t.Errorf("expected missing input, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
