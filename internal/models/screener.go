package models

import "encoding/json"

// Signal is the screener's verdict for a symbol.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// ScreenerResult is one screened symbol. The endpoint returns more fields than
// are typed here; the original object is kept so it can be sent back to the
// export endpoint untouched.
type ScreenerResult struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	Price          float64 `json:"price" yaml:"price"`
	Signal         Signal  `json:"signal" yaml:"signal"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
	BuySignals     int     `json:"buy_signals" yaml:"buy_signals"`
	SellSignals    int     `json:"sell_signals" yaml:"sell_signals"`
	NeutralSignals int     `json:"neutral_signals" yaml:"neutral_signals"`
	RSI            float64 `json:"rsi" yaml:"rsi"`
	ADX            float64 `json:"adx" yaml:"adx"`
	CCI            float64 `json:"cci" yaml:"cci"`
	MFI            float64 `json:"mfi" yaml:"mfi"`

	raw json.RawMessage
}

type screenerResultFields ScreenerResult

// UnmarshalJSON decodes the typed fields and keeps the raw object.
func (r *ScreenerResult) UnmarshalJSON(data []byte) error {
	var f screenerResultFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = ScreenerResult(f)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the object as received, or the typed fields for
// results built locally.
func (r ScreenerResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(screenerResultFields(r))
}
