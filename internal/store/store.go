// Package store keeps the session journal: one entry per screener, backtest
// or export run. The journal lives only as long as the process.
package store

import (
	"context"
	"time"
)

// RunKind names what was run.
type RunKind string

const (
	KindScreen   RunKind = "screen"
	KindBacktest RunKind = "backtest"
	KindExport   RunKind = "export"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeStale   Outcome = "stale"
	OutcomeFailed  Outcome = "failed"
)

// Run is one journal entry.
type Run struct {
	ID         int64         `json:"id" yaml:"id"`
	Kind       RunKind       `json:"kind" yaml:"kind"`
	Generation uint64        `json:"generation" yaml:"generation"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Outcome    Outcome       `json:"outcome" yaml:"outcome"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	Items      int           `json:"items" yaml:"items"`
}

// Journal records runs.
type Journal interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, n int) ([]Run, error)
	Close() error
}

// OutcomeOf classifies a finished run.
func OutcomeOf(applied bool, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case applied:
		return OutcomeApplied
	default:
		return OutcomeStale
	}
}
