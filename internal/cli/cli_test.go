package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"signal-dashboard/internal/notify"
)

type fakeService struct {
	// gate, when set, holds screen replies until a strategy push arrives.
	gate     chan struct{}
	gateOnce sync.Once
	timedOut bool

	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string][]byte
	screen   string
	status   int
	backtest string
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{
		calls:  make(map[string]int),
		bodies: make(map[string][]byte),
		status: http.StatusOK,
		screen: `{"success":true,"results":[
			{"symbol":"TCS","price":3500,"signal":"BUY","confidence":72,"rsi":61.2,"macd":1.5},
			{"symbol":"INFY","price":1500.5,"signal":"SELL","confidence":55},
			{"symbol":"ITC","price":410,"signal":"HOLD","confidence":40}]}`,
		backtest: `{"success":true,"initial_capital":100000,"final_capital":100008,"total_return":0.01,
			"total_trades":1,"winning_trades":1,"win_rate":100,
			"trades":[{"entry_time":"2024-03-01 09:15:00","exit_time":"2024-03-01 10:15:00","position":"long",
			"entry":100,"sl":95,"tp":110,"exit":108,"reason":"TP","pnl":8,"cumulative_pnl":8}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.bodies[r.URL.Path] = body
		status, screen, bt := f.status, f.screen, f.backtest
		f.mu.Unlock()

		switch r.URL.Path {
		case "/api/screen":
			if f.gate != nil {
				select {
				case <-f.gate:
				case <-time.After(5 * time.Second):
					f.mu.Lock()
					f.timedOut = true
					f.mu.Unlock()
				}
			}
			w.WriteHeader(status)
			w.Write([]byte(screen))
		case "/api/backtest":
			w.Write([]byte(bt))
		case "/api/update-strategy":
			if f.gate != nil {
				f.gateOnce.Do(func() { close(f.gate) })
			}
			w.Write([]byte(`{"success":true}`))
		case "/api/export-csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte("Symbol,Signal\nTCS,BUY\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeService) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeService) body(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

// runCLI runs the root command against srv with a fresh config and export
// directory.
func runCLI(t *testing.T, srv *httptest.Server, stdin string, args ...string) (stdout, stderr string, exportDir string, err error) {
	t.Helper()
	exportDir = t.TempDir()
	t.Setenv("DASHBOARD_BASE_URL", srv.URL)
	t.Setenv("DASHBOARD_EXPORT_DIR", exportDir)
	t.Setenv("DASHBOARD_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), exportDir, err
}

func TestScreenJSON(t *testing.T) {
	svc, srv := newFakeService(t)

	stdout, _, _, err := runCLI(t, srv, "", "screen", "--json", "--timeframe", "1h")
	if err != nil {
		t.Fatalf("screen: %v", err)
	}

	var doc struct {
		Summary struct {
			Buys, Sells, Holds, Other, Total int
		} `json:"summary"`
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("decoding output %q: %v", stdout, err)
	}
	if doc.Summary.Buys != 1 || doc.Summary.Sells != 1 || doc.Summary.Holds != 1 || doc.Summary.Total != 3 {
		t.Errorf("unexpected summary: %+v", doc.Summary)
	}
	if len(doc.Results) != 3 || doc.Results[0]["macd"] != 1.5 {
		t.Errorf("results should be passed through as received: %v", doc.Results)
	}

	var req struct {
		Timeframe  string          `json:"timeframe"`
		Indicators map[string]bool `json:"indicators"`
	}
	_ = json.Unmarshal(svc.body("/api/screen"), &req)
	if req.Timeframe != "1h" || len(req.Indicators) != 9 {
		t.Errorf("unexpected screen request: %+v", req)
	}
	if svc.count("/api/update-strategy") != 0 {
		t.Error("an unchanged selection should not be pushed")
	}
}

func TestScreenFailureIsAlertedOnce(t *testing.T) {
	svc, srv := newFakeService(t)
	svc.status = http.StatusInternalServerError
	svc.screen = `{"success":false,"error":"data provider unavailable"}`

	_, stderr, _, err := runCLI(t, srv, "", "screen")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !notify.WasReported(err) {
		t.Errorf("orchestrator failures should be marked as reported: %v", err)
	}
	if got := strings.Count(stderr, "data provider unavailable"); got != 1 {
		t.Errorf("alert shown %d times:\n%s", got, stderr)
	}
	if !strings.Contains(stderr, "[screener] Error: data provider unavailable") {
		t.Errorf("unexpected alert text:\n%s", stderr)
	}
}

func TestScreenIndicatorsArePushed(t *testing.T) {
	svc, srv := newFakeService(t)

	if _, _, _, err := runCLI(t, srv, "", "screen", "--indicators", "rsi,macd"); err != nil {
		t.Fatalf("screen: %v", err)
	}
	if svc.count("/api/update-strategy") != 1 {
		t.Errorf("strategy pushes = %d, want 1", svc.count("/api/update-strategy"))
	}
	var req struct {
		Indicators map[string]bool `json:"indicators"`
	}
	_ = json.Unmarshal(svc.body("/api/screen"), &req)
	if !req.Indicators["rsi"] || !req.Indicators["macd"] || req.Indicators["adx"] {
		t.Errorf("unexpected indicators: %v", req.Indicators)
	}
}

func TestStrategySetPushesUnchangedSelection(t *testing.T) {
	svc, srv := newFakeService(t)

	// The default config already enables every indicator.
	if _, _, _, err := runCLI(t, srv, "", "strategy", "set", "all"); err != nil {
		t.Fatalf("strategy set: %v", err)
	}
	if got := svc.count("/api/update-strategy"); got != 1 {
		t.Fatalf("strategy pushes = %d, want 1", got)
	}
	var req struct {
		Indicators map[string]bool `json:"indicators"`
	}
	_ = json.Unmarshal(svc.body("/api/update-strategy"), &req)
	if len(req.Indicators) != 9 || !req.Indicators["mfi"] {
		t.Errorf("unexpected strategy body: %v", req.Indicators)
	}
}

func TestBacktestUploadRequiresFile(t *testing.T) {
	svc, srv := newFakeService(t)

	_, stderr, _, err := runCLI(t, srv, "", "backtest", "upload")
	if err == nil {
		t.Fatal("expected an error")
	}
	if svc.count("/api/backtest") != 0 {
		t.Error("no request should be sent without a file")
	}
	if !strings.Contains(stderr, "Please select a CSV file") {
		t.Errorf("missing alert:\n%s", stderr)
	}
}

func TestBacktestLiveExport(t *testing.T) {
	svc, srv := newFakeService(t)

	stdout, _, dir, err := runCLI(t, srv, "", "backtest", "live", "--stock", "TCS", "--interval", "1h", "--period", "1mo", "--stop-loss", "15", "--export")
	if err != nil {
		t.Fatalf("backtest: %v", err)
	}

	var req struct {
		Stock    string                 `json:"stock"`
		Period   string                 `json:"period"`
		Interval string                 `json:"interval"`
		Params   map[string]interface{} `json:"params"`
	}
	_ = json.Unmarshal(svc.body("/api/backtest"), &req)
	if req.Stock != "TCS" || req.Period != "1mo" || req.Interval != "1h" {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Params["stop_loss"] != 15.0 || req.Params["take_profit"] != 40.0 || req.Params["interval"] != "1h" {
		t.Errorf("unexpected params: %v", req.Params)
	}

	if !strings.Contains(stdout, "Backtest Results") || !strings.Contains(stdout, "Trade History (1 trades)") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "backtest_trades_*.csv"))
	if len(matches) != 1 {
		t.Fatalf("expected one trades file, got %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if !strings.HasPrefix(string(data), "Entry Time,Position,") {
		t.Errorf("unexpected CSV:\n%s", data)
	}
}

func TestBacktestLiveRejectsLongPeriod(t *testing.T) {
	svc, srv := newFakeService(t)

	_, _, _, err := runCLI(t, srv, "", "backtest", "live", "--interval", "5m", "--period", "1y")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if svc.count("/api/backtest") != 0 {
		t.Error("no request should be sent")
	}
}

func TestPeriodsJSON(t *testing.T) {
	_, srv := newFakeService(t)

	stdout, _, _, err := runCLI(t, srv, "", "periods", "5m", "--json")
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	var doc periodsDocument
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("decoding %q: %v", stdout, err)
	}
	if doc.Default == "" || doc.Warning == "" || doc.MaxDays == nil || *doc.MaxDays != 60 {
		t.Errorf("unexpected resolution: %+v", doc)
	}
	for _, o := range doc.Options {
		if o.Days > 60 {
			t.Errorf("option %s exceeds the interval limit", o.Key)
		}
	}
}

func TestPeriodsListsIntervals(t *testing.T) {
	_, srv := newFakeService(t)

	stdout, _, _, err := runCLI(t, srv, "", "periods")
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if !strings.Contains(stdout, "1m") || !strings.Contains(stdout, "unlimited") {
		t.Errorf("interval table missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Periods: 1d, 5d, 7d, 1mo, 3mo, 6mo, 1y, 2y, 5y") {
		t.Errorf("period list missing:\n%s", stdout)
	}
}

func TestSessionScript(t *testing.T) {
	svc, srv := newFakeService(t)

	script := strings.Join([]string{
		"indicators rsi adx",
		"screen",
		"wait",
		"status",
		"export screener",
		"export backtest",
		"history",
		"bogus",
		"quit",
	}, "\n") + "\n"

	stdout, stderr, dir, err := runCLI(t, srv, script, "session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	if svc.count("/api/screen") != 1 || svc.count("/api/export-csv") != 1 {
		t.Errorf("unexpected calls: %v", svc.calls)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "stock_screening_*.csv"))
	if len(matches) != 1 {
		t.Errorf("expected one screening file, got %v", matches)
	}
	if !strings.Contains(stderr, "No trades to export") {
		t.Errorf("empty backtest export should be alerted:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Screens:      1 issued, 0 in flight") {
		t.Errorf("status should count the finished screen:\n%s", stdout)
	}
	if !strings.Contains(stdout, "unknown command") {
		t.Errorf("unknown command should be reported:\n%s", stdout)
	}
	if !strings.Contains(stdout, "screen") || !strings.Contains(stdout, "applied") {
		t.Errorf("history should list the screen run:\n%s", stdout)
	}
}

func TestSessionPromptStaysResponsiveDuringScreen(t *testing.T) {
	svc, srv := newFakeService(t)
	svc.gate = make(chan struct{})

	// The screen reply is held until the indicator change is pushed, which
	// only happens if the prompt handles the next line while screening.
	script := "screen\nindicators rsi\nwait\nquit\n"
	if _, _, _, err := runCLI(t, srv, script, "session"); err != nil {
		t.Fatalf("session: %v", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.timedOut {
		t.Error("prompt was blocked by the running screen")
	}
	if svc.calls["/api/screen"] != 1 || svc.calls["/api/update-strategy"] != 1 {
		t.Errorf("unexpected calls: %v", svc.calls)
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	out := newOutput(&buf, FormatText, false)
	table := NewTable(out, "Symbol", "Price")
	table.AddRow("TCS", "₹3500")
	table.AddRow("HDFCBANK", "₹1450.5")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Symbol    Price" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "TCS       ₹3500" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestConfidenceBar(t *testing.T) {
	tests := []struct {
		conf float64
		want string
	}{
		{0, "░░░░░"},
		{60, "███░░"},
		{100, "█████"},
		{150, "█████"},
		{-5, "░░░░░"},
	}
	for _, tt := range tests {
		if got := ConfidenceBar(tt.conf, 5); got != tt.want {
			t.Errorf("ConfidenceBar(%v) = %q, want %q", tt.conf, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"rsi,macd", "adx", " cci , mfi"})
	want := []string{"rsi", "macd", "adx", "cci", "mfi"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitList = %v", got)
	}
}
