package render

import (
	"fmt"
	"strings"

	"signal-dashboard/internal/models"
	"signal-dashboard/pkg/utils"
)

// NoTradesPlaceholder is shown instead of the trade table when a run made no
// trades.
const NoTradesPlaceholder = "No trades executed. Try adjusting parameters."

// Metric is one labelled figure of the metrics block.
type Metric struct {
	Label string
	Value string
	Tone  Tone
}

// Badge is a coloured label.
type Badge struct {
	Text       string
	Tone       Tone
	Color      string
	Background string
}

var reasonBadges = map[models.ExitReason]Badge{
	models.ExitStopLoss:   {Tone: Negative, Color: "#fca5a5", Background: "#7f1d1d"},
	models.ExitTakeProfit: {Tone: Positive, Color: "#86efac", Background: "#14532d"},
	models.ExitSignal:     {Tone: Neutral, Color: "#93c5fd", Background: "#1e3a8a"},
}

var fallbackBadge = Badge{Tone: Neutral, Color: "#94a3b8", Background: "#1e293b"}

// ReasonBadge looks up the badge for an exit reason, falling back to a
// neutral badge for reasons outside the fixed set.
func ReasonBadge(reason models.ExitReason) Badge {
	b, ok := reasonBadges[reason]
	if !ok {
		b = fallbackBadge
	}
	b.Text = string(reason)
	return b
}

// PositionBadge draws long positions green and everything else red.
func PositionBadge(p models.Position) Badge {
	b := Badge{Text: strings.ToUpper(string(p)), Tone: Negative, Color: "#fca5a5", Background: "#7f1d1d"}
	if p == models.PositionLong {
		b.Tone, b.Color, b.Background = Positive, "#86efac", "#14532d"
	}
	return b
}

// ExitAnalysis counts exits by reason.
type ExitAnalysis struct {
	StopLoss   int
	TakeProfit int
	Signal     int
}

// TradeRow is one rendered trade.
type TradeRow struct {
	EntryTime      string
	Position       Badge
	Entry          string
	SL             string
	TP             string
	ExitTime       string
	Exit           string
	Reason         Badge
	PnL            string
	PnLTone        Tone
	CumulativePnL  string
	CumulativeTone Tone
}

// BacktestView is the rendered backtest output. Placeholder is set exactly
// when there are no rows.
type BacktestView struct {
	Metrics     []Metric
	Exits       ExitAnalysis
	Rows        []TradeRow
	Placeholder string
	EquityCurve string
}

// Backtest renders result.
func Backtest(result models.BacktestResult) BacktestView {
	view := BacktestView{
		Metrics: metrics(result),
		Exits: ExitAnalysis{
			StopLoss:   result.SLExits,
			TakeProfit: result.TPExits,
			Signal:     result.SignalExits,
		},
		EquityCurve: EquityCurve(result.EquityCurve, 60, 12),
	}

	if len(result.Trades) == 0 {
		view.Placeholder = NoTradesPlaceholder
		return view
	}

	view.Rows = make([]TradeRow, 0, len(result.Trades))
	for _, t := range result.Trades {
		view.Rows = append(view.Rows, TradeRow{
			EntryTime:      FormatTradeDate(t.EntryTime),
			Position:       PositionBadge(t.Position),
			Entry:          Number(t.Entry),
			SL:             Number(t.SL),
			TP:             Number(t.TP),
			ExitTime:       FormatTradeDate(t.ExitTime),
			Exit:           Number(t.Exit),
			Reason:         ReasonBadge(t.Reason),
			PnL:            utils.FormatSigned(t.PnL),
			PnLTone:        SignTone(t.PnL),
			CumulativePnL:  utils.FormatSigned(t.CumulativePnL),
			CumulativeTone: SignTone(t.CumulativePnL),
		})
	}
	return view
}

// SignTone is positive for values >= 0 and negative otherwise.
func SignTone(v float64) Tone {
	if v >= 0 {
		return Positive
	}
	return Negative
}

func metrics(r models.BacktestResult) []Metric {
	winTone := Negative
	if r.WinRate >= 50 {
		winTone = Positive
	}

	return []Metric{
		{Label: "Total Return", Value: utils.FormatSigned(r.TotalReturn) + "%", Tone: SignTone(r.TotalReturn)},
		{Label: "Total Trades", Value: fmt.Sprintf("%d", r.TotalTrades), Tone: Neutral},
		{Label: "Win Rate", Value: Number(r.WinRate) + "%", Tone: winTone},
		{Label: "Max Drawdown", Value: Number(r.MaxDrawdown) + "%", Tone: Negative},
		{Label: "Avg Profit/Trade", Value: utils.FormatSigned(r.AvgProfitPerTrade), Tone: SignTone(r.AvgProfitPerTrade)},
		{Label: "Avg Win", Value: "+" + Number(r.AvgWin), Tone: Positive},
		{Label: "Avg Loss", Value: Number(r.AvgLoss), Tone: Negative},
		{Label: "Final Capital", Value: utils.FormatIndianAmount(r.FinalCapital), Tone: Neutral},
	}
}
