// Package timeframe resolves which history periods a sampling interval can
// request under the data provider's limits.
package timeframe

import (
	"fmt"

	apperrors "signal-dashboard/internal/errors"
)

// Limit is the provider's history limit for one interval. A nil MaxDays means
// the interval is unconstrained.
type Limit struct {
	Interval       string
	MaxPeriodLabel *string
	MaxDays        *int
	Label          string
}

// Constrained reports whether the interval has a history limit.
func (l Limit) Constrained() bool {
	return l.MaxDays != nil
}

// Option is a selectable history period.
type Option struct {
	Key   string
	Days  int
	Label string
}

// Resolution is the outcome of resolving an interval.
type Resolution struct {
	Limit   Limit
	Options []Option
	// Default is nil only when no option is valid.
	Default *Option
	Warning string
}

// DefaultKey returns the key of the default option, or "".
func (r Resolution) DefaultKey() string {
	if r.Default == nil {
		return ""
	}
	return r.Default.Key
}

// Contains reports whether period is one of the resolved options.
func (r Resolution) Contains(period string) bool {
	for _, o := range r.Options {
		if o.Key == period {
			return true
		}
	}
	return false
}

func bounded(maxLabel string, days int) (*string, *int) {
	return &maxLabel, &days
}

var limits = func() []Limit {
	l7, d7 := bounded("7d", 7)
	l60, d60 := bounded("60d", 60)
	l730, d730 := bounded("730d", 730)
	return []Limit{
		{Interval: "1m", MaxPeriodLabel: l7, MaxDays: d7, Label: "1 Minute"},
		{Interval: "5m", MaxPeriodLabel: l60, MaxDays: d60, Label: "5 Minutes"},
		{Interval: "15m", MaxPeriodLabel: l60, MaxDays: d60, Label: "15 Minutes"},
		{Interval: "30m", MaxPeriodLabel: l60, MaxDays: d60, Label: "30 Minutes"},
		{Interval: "1h", MaxPeriodLabel: l730, MaxDays: d730, Label: "1 Hour"},
		{Interval: "1d", Label: "1 Day"},
	}
}()

// options is ordered by ascending Days.
var options = []Option{
	{Key: "1d", Days: 1, Label: "1 Day"},
	{Key: "5d", Days: 5, Label: "5 Days"},
	{Key: "7d", Days: 7, Label: "7 Days"},
	{Key: "1mo", Days: 30, Label: "1 Month"},
	{Key: "3mo", Days: 90, Label: "3 Months"},
	{Key: "6mo", Days: 180, Label: "6 Months"},
	{Key: "1y", Days: 365, Label: "1 Year"},
	{Key: "2y", Days: 730, Label: "2 Years"},
	{Key: "5y", Days: 1825, Label: "5 Years"},
}

// Intervals returns the interval limit table in order.
func Intervals() []Limit {
	out := make([]Limit, len(limits))
	copy(out, limits)
	return out
}

// Periods returns every period option in ascending order.
func Periods() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// LookupInterval returns the limit for an interval key.
func LookupInterval(interval string) (Limit, error) {
	for _, l := range limits {
		if l.Interval == interval {
			return l, nil
		}
	}
	return Limit{}, apperrors.NewConfigurationError("interval",
		fmt.Sprintf("unknown interval %q", interval))
}

// LookupPeriod returns the option for a period key.
func LookupPeriod(period string) (Option, error) {
	for _, o := range options {
		if o.Key == period {
			return o, nil
		}
	}
	return Option{}, apperrors.NewValidationError("period", period,
		fmt.Sprintf("unknown period %q", period))
}

// Resolve returns the periods valid for interval, the middle one as the
// default, and a warning when the interval is constrained.
func Resolve(interval string) (Resolution, error) {
	limit, err := LookupInterval(interval)
	if err != nil {
		return Resolution{}, err
	}
	return resolve(limit, options), nil
}

func resolve(limit Limit, candidates []Option) Resolution {
	res := Resolution{Limit: limit}
	for _, o := range candidates {
		if limit.MaxDays == nil || o.Days <= *limit.MaxDays {
			res.Options = append(res.Options, o)
		}
	}

	if n := len(res.Options); n > 0 {
		def := res.Options[n/2]
		res.Default = &def
	}

	if limit.Constrained() {
		maxLabel := ""
		if limit.MaxPeriodLabel != nil {
			maxLabel = *limit.MaxPeriodLabel
		}
		res.Warning = fmt.Sprintf("%s interval: Maximum %s of data available. For longer periods, use Daily interval.",
			limit.Label, maxLabel)
	}
	return res
}

// Validate checks that period can be requested at interval.
func Validate(interval, period string) error {
	limit, err := LookupInterval(interval)
	if err != nil {
		return err
	}
	opt, err := LookupPeriod(period)
	if err != nil {
		return err
	}
	if limit.MaxDays != nil && opt.Days > *limit.MaxDays {
		return apperrors.NewValidationError("period", period,
			fmt.Sprintf("For %s interval, maximum period is %s. Please select a shorter period.",
				interval, *limit.MaxPeriodLabel))
	}
	return nil
}

// IsInterval reports whether interval is in the limit table.
func IsInterval(interval string) bool {
	_, err := LookupInterval(interval)
	return err == nil
}

// ScreenerTimeframes are the timeframes offered to the screener; they share
// the interval table.
func ScreenerTimeframes() []string {
	out := make([]string, 0, len(limits))
	for _, l := range limits {
		out = append(out, l.Interval)
	}
	return out
}
