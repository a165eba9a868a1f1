package timeframe

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "signal-dashboard/internal/errors"
)

func keys(opts []Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.Key
	}
	return strings.Join(parts, ",")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		interval    string
		wantKeys    string
		wantDefault string
		wantWarning string
	}{
		{"1m", "1d,5d,7d", "5d", "1 Minute interval: Maximum 7d of data available. For longer periods, use Daily interval."},
		{"5m", "1d,5d,7d,1mo", "7d", "5 Minutes interval: Maximum 60d of data available. For longer periods, use Daily interval."},
		{"15m", "1d,5d,7d,1mo", "7d", "15 Minutes interval: Maximum 60d of data available. For longer periods, use Daily interval."},
		{"30m", "1d,5d,7d,1mo", "7d", "30 Minutes interval: Maximum 60d of data available. For longer periods, use Daily interval."},
		{"1h", "1d,5d,7d,1mo,3mo,6mo,1y,2y", "3mo", "1 Hour interval: Maximum 730d of data available. For longer periods, use Daily interval."},
		{"1d", "1d,5d,7d,1mo,3mo,6mo,1y,2y,5y", "3mo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			res, err := Resolve(tt.interval)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", tt.interval, err)
			}
			if got := keys(res.Options); got != tt.wantKeys {
				t.Errorf("options = %s, want %s", got, tt.wantKeys)
			}
			if got := res.DefaultKey(); got != tt.wantDefault {
				t.Errorf("default = %s, want %s", got, tt.wantDefault)
			}
			if res.Warning != tt.wantWarning {
				t.Errorf("warning = %q, want %q", res.Warning, tt.wantWarning)
			}
		})
	}
}

func TestResolveUnknownInterval(t *testing.T) {
	_, err := Resolve("2h")
	if err == nil {
		t.Fatal("expected error for unknown interval")
	}
	var cfgErr *apperrors.ConfigurationError
	if !apperrors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestResolveEmptyHasNoDefault(t *testing.T) {
	tiny, days := bounded("0d", 0)
	res := resolve(Limit{Interval: "x", MaxPeriodLabel: tiny, MaxDays: days, Label: "X"}, options)
	if len(res.Options) != 0 {
		t.Fatalf("expected no options, got %s", keys(res.Options))
	}
	if res.Default != nil {
		t.Errorf("expected no default, got %s", res.Default.Key)
	}
}

func TestProperty_ResolverFiltersAndPicksMiddle(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	intervals := ScreenerTimeframes()

	properties.Property("every option respects the limit, order preserved, default at n/2", prop.ForAll(
		func(idx int) bool {
			interval := intervals[idx%len(intervals)]
			res, err := Resolve(interval)
			if err != nil || len(res.Options) == 0 {
				return false
			}
			prev := -1
			for _, o := range res.Options {
				if res.Limit.MaxDays != nil && o.Days > *res.Limit.MaxDays {
					t.Logf("%s: option %s exceeds %d days", interval, o.Key, *res.Limit.MaxDays)
					return false
				}
				if o.Days <= prev {
					return false
				}
				prev = o.Days
			}
			if res.Limit.MaxDays == nil && len(res.Options) != len(Periods()) {
				return false
			}
			return res.Default != nil && *res.Default == res.Options[len(res.Options)/2]
		},
		gen.IntRange(0, 1000),
	))

	properties.Property("synthetic limits keep exactly the options within maxDays", prop.ForAll(
		func(maxDays int) bool {
			label, days := bounded("custom", maxDays)
			res := resolve(Limit{Interval: "c", MaxPeriodLabel: label, MaxDays: days, Label: "Custom"}, options)
			want := 0
			for _, o := range options {
				if o.Days <= maxDays {
					want++
				}
			}
			if len(res.Options) != want {
				return false
			}
			if want == 0 {
				return res.Default == nil
			}
			return res.Default.Key == res.Options[want/2].Key
		},
		gen.IntRange(0, 2000),
	))

	properties.TestingRun(t)
}

func TestValidate(t *testing.T) {
	if err := Validate("1h", "2y"); err != nil {
		t.Errorf("1h/2y should be valid: %v", err)
	}
	err := Validate("1h", "5y")
	if err == nil {
		t.Fatal("1h/5y should be rejected")
	}
	if !strings.Contains(err.Error(), "maximum period is 730d") {
		t.Errorf("unexpected message: %v", err)
	}
	if !apperrors.Is(err, apperrors.ErrInputValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := Validate("1d", "5y"); err != nil {
		t.Errorf("daily is unconstrained: %v", err)
	}
	if err := Validate("1d", "10y"); err == nil {
		t.Error("unknown period should be rejected")
	}
	if err := Validate("4h", "1d"); !apperrors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("unknown interval should be a configuration error, got %v", err)
	}
}
