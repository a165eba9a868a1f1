package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// TerminalAlerter writes alerts as single lines, like a browser alert box
// would show them.
type TerminalAlerter struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewTerminalAlerter creates a TerminalAlerter writing to out.
func NewTerminalAlerter(out io.Writer, color bool) *TerminalAlerter {
	return &TerminalAlerter{out: out, color: color}
}

// Alert prints a.
func (t *TerminalAlerter) Alert(_ context.Context, a Alert) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := ""
	if a.Source != "" {
		prefix = "[" + a.Source + "] "
	}

	line := prefix + a.Message
	if t.color {
		switch a.Kind {
		case KindError:
			line = "\033[31m" + line + "\033[0m"
		case KindSuccess:
			line = "\033[32m" + line + "\033[0m"
		default:
			line = "\033[36m" + line + "\033[0m"
		}
	}
	_, err := fmt.Fprintln(t.out, line)
	return err
}

// Recorder keeps alerts in memory. Tests and the interactive session use it
// to inspect what the user was shown.
type Recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

// Alert records a.
func (r *Recorder) Alert(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

// Alerts returns a copy of everything recorded.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}
