package cli

import (
	"fmt"
	"sync"
	"time"

	"signal-dashboard/internal/models"
	"signal-dashboard/internal/render"
)

// TerminalView draws applied results to an Output.
type TerminalView struct {
	mu  sync.Mutex
	out *Output
}

// NewTerminalView creates a TerminalView.
func NewTerminalView(out *Output) *TerminalView {
	return &TerminalView{out: out}
}

type screenerDocument struct {
	RefreshedAt time.Time               `json:"refreshed_at" yaml:"refreshed_at"`
	Summary     render.Summary          `json:"summary" yaml:"summary"`
	Results     []models.ScreenerResult `json:"results" yaml:"results"`
}

// ShowScreener implements screener.View.
func (v *TerminalView) ShowScreener(view render.ScreenerView, refreshedAt time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := v.out
	if out.IsStructured() {
		doc := screenerDocument{RefreshedAt: refreshedAt, Summary: view.Summary, Results: make([]models.ScreenerResult, 0, len(view.Cards))}
		for _, c := range view.Cards {
			doc.Results = append(doc.Results, c.Result)
		}
		_ = out.Structured(doc)
		return
	}

	out.Heading("Screener Results")
	out.Dim("Last updated: %s", FormatClock(refreshedAt))
	s := view.Summary
	summary := fmt.Sprintf("%s  %s  %s",
		out.Toned(render.Positive, fmt.Sprintf("🟢 %d BUY", s.Buys)),
		out.Toned(render.Negative, fmt.Sprintf("🔴 %d SELL", s.Sells)),
		out.Toned(render.Neutral, fmt.Sprintf("🟡 %d HOLD", s.Holds)))
	if s.Other > 0 {
		summary += "  " + out.DimText(fmt.Sprintf("%d other", s.Other))
	}
	out.Println(summary + "  " + out.DimText(fmt.Sprintf("(%d stocks)", s.Total)))
	out.Println()

	if view.Empty() {
		out.Dim("No stocks matched.")
		return
	}

	table := NewTable(out, "Symbol", "Price", "Signal", "Confidence", "B/S/N", "RSI", "ADX", "CCI", "MFI")
	for _, c := range view.Cards {
		readouts := make([]string, 0, len(c.Indicators))
		for _, r := range c.Indicators {
			readouts = append(readouts, r.Value)
		}
		row := []string{
			out.BoldText(c.Symbol),
			c.Price,
			out.Toned(c.Presentation.ColorClass, c.Presentation.Emoji+" "+string(c.Signal)),
			fmt.Sprintf("%s %s%%", out.Toned(c.Presentation.ColorClass, ConfidenceBar(c.Confidence, 10)), render.Number(c.Confidence)),
			fmt.Sprintf("%d/%d/%d", c.BuySignals, c.SellSignals, c.NeutralSignals),
		}
		table.AddRow(append(row, readouts...)...)
	}
	table.Render()
	out.Println()
}

// ShowBacktest implements backtest.View.
func (v *TerminalView) ShowBacktest(view render.BacktestView, result models.BacktestResult) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := v.out
	if out.IsStructured() {
		_ = out.Structured(result)
		return
	}

	out.Heading("Backtest Results")
	metrics := make([]string, 0, len(view.Metrics))
	for _, m := range view.Metrics {
		metrics = append(metrics, fmt.Sprintf("%-17s %s", m.Label+":", out.Toned(m.Tone, m.Value)))
	}
	out.Box("Performance", metrics)
	out.Printf("Exit Analysis:  Stop Loss: %d  Take Profit: %d  Signal Exit: %d\n",
		view.Exits.StopLoss, view.Exits.TakeProfit, view.Exits.Signal)
	out.Println()

	if view.EquityCurve != "" {
		out.Printf("%s", view.EquityCurve)
		out.Println()
	}

	if view.Placeholder != "" {
		out.Dim("%s", view.Placeholder)
		return
	}

	out.Heading("Trade History (%d trades)", len(view.Rows))
	table := NewTable(out, "Entry Time", "Position", "Entry", "SL", "TP", "Exit Time", "Exit", "Reason", "P&L", "Cumulative P&L")
	for _, r := range view.Rows {
		table.AddRow(
			r.EntryTime,
			out.Toned(r.Position.Tone, r.Position.Text),
			r.Entry,
			out.DimText(r.SL),
			out.DimText(r.TP),
			r.ExitTime,
			r.Exit,
			out.Toned(r.Reason.Tone, r.Reason.Text),
			out.Toned(r.PnLTone, r.PnL),
			out.Toned(r.CumulativeTone, r.CumulativePnL),
		)
	}
	table.Render()
	out.Dim("Showing 1-%d of %d", len(view.Rows), len(view.Rows))
}

