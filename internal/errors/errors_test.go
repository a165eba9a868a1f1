package errors

import (
	"fmt"
	"testing"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"transport", NewTransportError("/api/screen", fmt.Errorf("dial tcp: refused")), ErrConnectionFailed},
		{"application", NewApplicationError("/api/screen", 500, "boom"), ErrRequestFailed},
		{"validation", NewValidationError("period", "5y", "too long"), ErrInputValidation},
		{"missing input", NewMissingInputError("csv_data", "Please select a CSV file"), ErrMissingInput},
		{"configuration", NewConfigurationError("interval", "unknown interval 2h"), ErrConfigInvalid},
		{"empty state", NewEmptyStateError("screener", "No results to export"), ErrNoResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "running")
			if !Is(wrapped, tt.target) {
				t.Errorf("expected %v to match %v", wrapped, tt.target)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(NewApplicationError("/api/backtest", 400, "Need at least 60 candles")); got != "Error: Need at least 60 candles" {
		t.Errorf("unexpected application message: %q", got)
	}
	if got := UserMessage(NewMissingInputError("csv_data", "Please select a CSV file")); got != "Please select a CSV file" {
		t.Errorf("unexpected validation message: %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("expected empty message for nil, got %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
}
