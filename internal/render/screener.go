// Package render turns screener and backtest results into view models the
// terminal output layer draws. Nothing here performs I/O.
package render

import (
	"strconv"

	"signal-dashboard/internal/models"
)

// Tone is the sign-aware styling class of a value.
type Tone string

const (
	Positive Tone = "positive"
	Negative Tone = "negative"
	Neutral  Tone = "neutral"
)

// Presentation is how a signal is drawn.
type Presentation struct {
	ColorClass      Tone
	Color           string
	BadgeBackground string
	Emoji           string
}

var (
	buyPresentation     = Presentation{ColorClass: Positive, Color: "#86efac", BadgeBackground: "#14532d", Emoji: "🟢"}
	sellPresentation    = Presentation{ColorClass: Negative, Color: "#fca5a5", BadgeBackground: "#7f1d1d", Emoji: "🔴"}
	neutralPresentation = Presentation{ColorClass: Neutral, Color: "#93c5fd", BadgeBackground: "#1e3a8a", Emoji: "🟡"}
)

// PresentationFor maps a signal to its presentation. Anything other than an
// exact BUY or SELL is drawn neutral.
func PresentationFor(signal models.Signal) Presentation {
	switch signal {
	case models.SignalBuy:
		return buyPresentation
	case models.SignalSell:
		return sellPresentation
	default:
		return neutralPresentation
	}
}

// Summary counts results by signal. Signals outside BUY, SELL and HOLD are
// counted in Other only.
type Summary struct {
	Buys  int `json:"buys" yaml:"buys"`
	Sells int `json:"sells" yaml:"sells"`
	Holds int `json:"holds" yaml:"holds"`
	Other int `json:"other" yaml:"other"`
	Total int `json:"total" yaml:"total"`
}

// Card is one stock result.
type Card struct {
	Result         models.ScreenerResult
	Symbol         string
	Price          string
	Signal         models.Signal
	Presentation   Presentation
	Confidence     float64
	BuySignals     int
	SellSignals    int
	NeutralSignals int
	Indicators     []Readout
}

// Readout is a labelled indicator value on a card.
type Readout struct {
	Label string
	Value string
}

// ScreenerView is the rendered screener output.
type ScreenerView struct {
	Summary Summary
	Cards   []Card
}

// Empty reports whether there is nothing to draw.
func (v ScreenerView) Empty() bool {
	return len(v.Cards) == 0
}

// Screener renders results in the order given.
func Screener(results []models.ScreenerResult) ScreenerView {
	view := ScreenerView{Cards: make([]Card, 0, len(results))}
	for _, r := range results {
		view.Summary.Total++
		switch r.Signal {
		case models.SignalBuy:
			view.Summary.Buys++
		case models.SignalSell:
			view.Summary.Sells++
		case models.SignalHold:
			view.Summary.Holds++
		default:
			view.Summary.Other++
		}
		view.Cards = append(view.Cards, card(r))
	}
	return view
}

func card(r models.ScreenerResult) Card {
	return Card{
		Result:         r,
		Symbol:         r.Symbol,
		Price:          "₹" + Number(r.Price),
		Signal:         r.Signal,
		Presentation:   PresentationFor(r.Signal),
		Confidence:     r.Confidence,
		BuySignals:     r.BuySignals,
		SellSignals:    r.SellSignals,
		NeutralSignals: r.NeutralSignals,
		Indicators: []Readout{
			{Label: "RSI", Value: Number(r.RSI)},
			{Label: "ADX", Value: Number(r.ADX)},
			{Label: "CCI", Value: Number(r.CCI)},
			{Label: "MFI", Value: Number(r.MFI)},
		},
	}
}

// Number formats v in its shortest exact form: 100, 8.5, -3.25.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
