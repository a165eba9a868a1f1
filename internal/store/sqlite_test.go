package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC)

	runs := []Run{
		{Kind: KindScreen, Generation: 1, StartedAt: start, Duration: 1200 * time.Millisecond, Outcome: OutcomeApplied, Items: 14},
		{Kind: KindBacktest, Generation: 1, StartedAt: start.Add(time.Minute), Duration: 3 * time.Second, Outcome: OutcomeFailed, Message: "Error: No data"},
		{Kind: KindExport, Generation: 0, StartedAt: start.Add(2 * time.Minute), Outcome: OutcomeApplied, Items: 3},
	}
	for _, r := range runs {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Kind != KindExport || got[1].Kind != KindBacktest {
		t.Errorf("expected newest first, got %s then %s", got[0].Kind, got[1].Kind)
	}
	if got[1].Message != "Error: No data" || got[1].Duration != 3*time.Second {
		t.Errorf("backtest run = %+v", got[1])
	}
	if !got[1].StartedAt.Equal(start.Add(time.Minute)) {
		t.Errorf("started_at = %v", got[1].StartedAt)
	}
}

func TestStoresAreIndependent(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)

	if err := a.Record(context.Background(), Run{Kind: KindScreen, StartedAt: time.Now(), Outcome: OutcomeApplied}); err != nil {
		t.Fatal(err)
	}
	runs, err := b.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("second journal should start empty, got %d runs", len(runs))
	}
}

func TestOutcomeOf(t *testing.T) {
	if OutcomeOf(true, nil) != OutcomeApplied || OutcomeOf(false, nil) != OutcomeStale || OutcomeOf(true, errors.New("x")) != OutcomeFailed {
		t.Error("unexpected outcome classification")
	}
}

// Recording n runs and reading them back yields the same kinds and items in
// reverse order.
func TestProperty_JournalRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	kinds := []RunKind{KindScreen, KindBacktest, KindExport}

	properties.Property("recent returns recorded runs newest first", prop.ForAll(
		func(items []int) bool {
			s, err := NewSessionStore()
			if err != nil {
				return false
			}
			defer s.Close()

			ctx := context.Background()
			for i, n := range items {
				run := Run{Kind: kinds[i%len(kinds)], Generation: uint64(i), StartedAt: time.Now(), Outcome: OutcomeApplied, Items: n}
				if err := s.Record(ctx, run); err != nil {
					return false
				}
			}

			got, err := s.Recent(ctx, len(items)+1)
			if err != nil || len(got) != len(items) {
				return false
			}
			for i, r := range got {
				j := len(items) - 1 - i
				if r.Items != items[j] || r.Kind != kinds[j%len(kinds)] || r.Generation != uint64(j) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, gen.IntRange(0, 500)),
	))

	properties.TestingRun(t)
}
