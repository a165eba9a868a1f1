// Package models provides domain models for the dashboard client.
package models

import (
	"fmt"
	"strings"

	apperrors "signal-dashboard/internal/errors"
)

// Indicator names understood by the screener and backtester.
const (
	IndicatorRSI        = "rsi"
	IndicatorMACD       = "macd"
	IndicatorBollinger  = "bollinger"
	IndicatorStochastic = "stochastic"
	IndicatorADX        = "adx"
	IndicatorVolume     = "volume"
	IndicatorCCI        = "cci"
	IndicatorWillR      = "willr"
	IndicatorMFI        = "mfi"
)

// IndicatorNames is the fixed, ordered key set of an IndicatorSelection.
var IndicatorNames = []string{
	IndicatorRSI,
	IndicatorMACD,
	IndicatorBollinger,
	IndicatorStochastic,
	IndicatorADX,
	IndicatorVolume,
	IndicatorCCI,
	IndicatorWillR,
	IndicatorMFI,
}

// IndicatorSelection holds one toggle per indicator. Being a struct, every
// key is always present on the wire.
type IndicatorSelection struct {
	RSI        bool `json:"rsi" yaml:"rsi" mapstructure:"rsi"`
	MACD       bool `json:"macd" yaml:"macd" mapstructure:"macd"`
	Bollinger  bool `json:"bollinger" yaml:"bollinger" mapstructure:"bollinger"`
	Stochastic bool `json:"stochastic" yaml:"stochastic" mapstructure:"stochastic"`
	ADX        bool `json:"adx" yaml:"adx" mapstructure:"adx"`
	Volume     bool `json:"volume" yaml:"volume" mapstructure:"volume"`
	CCI        bool `json:"cci" yaml:"cci" mapstructure:"cci"`
	WillR      bool `json:"willr" yaml:"willr" mapstructure:"willr"`
	MFI        bool `json:"mfi" yaml:"mfi" mapstructure:"mfi"`
}

// AllIndicators returns a selection with every indicator enabled.
func AllIndicators() IndicatorSelection {
	return IndicatorSelection{
		RSI: true, MACD: true, Bollinger: true, Stochastic: true, ADX: true,
		Volume: true, CCI: true, WillR: true, MFI: true,
	}
}

// ParseIndicators builds a selection with exactly the named indicators on.
func ParseIndicators(names []string) (IndicatorSelection, error) {
	var sel IndicatorSelection
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == "all" {
			sel = AllIndicators()
			continue
		}
		if err := sel.Set(name, true); err != nil {
			return IndicatorSelection{}, err
		}
	}
	return sel, nil
}

func (s *IndicatorSelection) field(name string) (*bool, error) {
	switch strings.ToLower(name) {
	case IndicatorRSI:
		return &s.RSI, nil
	case IndicatorMACD:
		return &s.MACD, nil
	case IndicatorBollinger:
		return &s.Bollinger, nil
	case IndicatorStochastic:
		return &s.Stochastic, nil
	case IndicatorADX:
		return &s.ADX, nil
	case IndicatorVolume:
		return &s.Volume, nil
	case IndicatorCCI:
		return &s.CCI, nil
	case IndicatorWillR:
		return &s.WillR, nil
	case IndicatorMFI:
		return &s.MFI, nil
	}
	return nil, apperrors.NewValidationError("indicator", name,
		fmt.Sprintf("unknown indicator %q (valid: %s)", name, strings.Join(IndicatorNames, ", ")))
}

// Set toggles a single indicator.
func (s *IndicatorSelection) Set(name string, on bool) error {
	f, err := s.field(name)
	if err != nil {
		return err
	}
	*f = on
	return nil
}

// Get reports whether an indicator is enabled.
func (s IndicatorSelection) Get(name string) (bool, error) {
	f, err := s.field(name)
	if err != nil {
		return false, err
	}
	return *f, nil
}

// Active returns the enabled indicator names in key order.
func (s IndicatorSelection) Active() []string {
	active := make([]string, 0, len(IndicatorNames))
	for _, name := range IndicatorNames {
		if on, _ := s.Get(name); on {
			active = append(active, name)
		}
	}
	return active
}

// Count returns how many indicators are enabled.
func (s IndicatorSelection) Count() int {
	return len(s.Active())
}

// CountLabel returns the "N indicators selected" caption.
func (s IndicatorSelection) CountLabel() string {
	n := s.Count()
	if n == 1 {
		return "1 indicator selected"
	}
	return fmt.Sprintf("%d indicators selected", n)
}

// Map returns the selection as a name → enabled map with all nine keys.
func (s IndicatorSelection) Map() map[string]bool {
	m := make(map[string]bool, len(IndicatorNames))
	for _, name := range IndicatorNames {
		m[name], _ = s.Get(name)
	}
	return m
}
