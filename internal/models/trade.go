package models

import (
	"fmt"
	"math"
)

// Position is the direction of a backtest trade.
type Position string

const (
	PositionLong  Position = "long"
	PositionShort Position = "short"
)

// ExitReason says why a backtest trade was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "SL"
	ExitTakeProfit ExitReason = "TP"
	ExitSignal     ExitReason = "Signal"
)

// BacktestParams are the risk and cost parameters of a backtest run.
// Interval is only sent for live-fetch runs.
type BacktestParams struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital" mapstructure:"initial_capital"`
	RiskPerTrade   float64 `json:"risk_per_trade" yaml:"risk_per_trade" mapstructure:"risk_per_trade"`
	StopLoss       float64 `json:"stop_loss" yaml:"stop_loss" mapstructure:"stop_loss"`
	TakeProfit     float64 `json:"take_profit" yaml:"take_profit" mapstructure:"take_profit"`
	TickSize       float64 `json:"tick_size" yaml:"tick_size" mapstructure:"tick_size"`
	TickValue      float64 `json:"tick_value" yaml:"tick_value" mapstructure:"tick_value"`
	Commission     float64 `json:"commission" yaml:"commission" mapstructure:"commission"`
	Slippage       float64 `json:"slippage" yaml:"slippage" mapstructure:"slippage"`
	Interval       string  `json:"interval,omitempty" yaml:"interval,omitempty" mapstructure:"-"`
}

// DefaultBacktestParams returns the backtester's own defaults.
func DefaultBacktestParams() BacktestParams {
	return BacktestParams{
		InitialCapital: 100000,
		RiskPerTrade:   2.0,
		StopLoss:       20,
		TakeProfit:     40,
		TickSize:       0.05,
		TickValue:      1,
		Commission:     20,
		Slippage:       1,
	}
}

// Trade is one simulated round trip.
type Trade struct {
	EntryTime     string     `json:"entry_time" yaml:"entry_time"`
	ExitTime      string     `json:"exit_time" yaml:"exit_time"`
	Position      Position   `json:"position" yaml:"position"`
	Entry         float64    `json:"entry" yaml:"entry"`
	SL            float64    `json:"sl" yaml:"sl"`
	TP            float64    `json:"tp" yaml:"tp"`
	Exit          float64    `json:"exit" yaml:"exit"`
	Reason        ExitReason `json:"reason" yaml:"reason"`
	PnL           float64    `json:"pnl" yaml:"pnl"`
	CumulativePnL float64    `json:"cumulative_pnl" yaml:"cumulative_pnl"`
}

// EquityPoint is a sample of the account equity.
type EquityPoint struct {
	Date   string  `json:"date" yaml:"date"`
	Equity float64 `json:"equity" yaml:"equity"`
}

// BacktestResult holds the metrics and trades of a backtest run.
type BacktestResult struct {
	InitialCapital    float64       `json:"initial_capital" yaml:"initial_capital"`
	FinalCapital      float64       `json:"final_capital" yaml:"final_capital"`
	TotalReturn       float64       `json:"total_return" yaml:"total_return"`
	TotalTrades       int           `json:"total_trades" yaml:"total_trades"`
	WinningTrades     int           `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades      int           `json:"losing_trades" yaml:"losing_trades"`
	WinRate           float64       `json:"win_rate" yaml:"win_rate"`
	MaxDrawdown       float64       `json:"max_drawdown" yaml:"max_drawdown"`
	AvgProfitPerTrade float64       `json:"avg_profit_per_trade" yaml:"avg_profit_per_trade"`
	AvgWin            float64       `json:"avg_win" yaml:"avg_win"`
	AvgLoss           float64       `json:"avg_loss" yaml:"avg_loss"`
	SLExits           int           `json:"sl_exits" yaml:"sl_exits"`
	TPExits           int           `json:"tp_exits" yaml:"tp_exits"`
	SignalExits       int           `json:"signal_exits" yaml:"signal_exits"`
	EquityCurve       []EquityPoint `json:"equity_curve,omitempty" yaml:"equity_curve,omitempty"`
	Trades            []Trade       `json:"trades" yaml:"trades"`
}

// CheckCumulative verifies that every trade's cumulative P&L equals the
// running sum of P&L up to it. The backtester rounds each value to cents, so
// a tolerance is accepted.
func (r *BacktestResult) CheckCumulative(tolerance float64) error {
	var running float64
	for i, t := range r.Trades {
		running += t.PnL
		if math.Abs(running-t.CumulativePnL) > tolerance {
			return fmt.Errorf("trade %d: cumulative_pnl %.2f, running sum %.2f", i, t.CumulativePnL, running)
		}
	}
	return nil
}
