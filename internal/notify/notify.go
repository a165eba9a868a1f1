// Package notify provides the user-visible alert channel of the dashboard.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"signal-dashboard/internal/config"
	apperrors "signal-dashboard/internal/errors"
)

// Alerter surfaces a notification to the user.
type Alerter interface {
	Alert(ctx context.Context, a Alert) error
}

// AlertKind classifies an alert.
type AlertKind string

const (
	KindError   AlertKind = "error"
	KindInfo    AlertKind = "info"
	KindSuccess AlertKind = "success"
)

// Alert is one user-visible notification.
type Alert struct {
	Kind      AlertKind
	Source    string
	Message   string
	Timestamp time.Time
}

// ErrorAlert builds the single notification for an orchestrator error.
func ErrorAlert(source string, err error) Alert {
	return Alert{
		Kind:      KindError,
		Source:    source,
		Message:   apperrors.UserMessage(err),
		Timestamp: time.Now(),
	}
}

// InfoAlert builds an informational notification.
func InfoAlert(source, format string, args ...interface{}) Alert {
	return Alert{
		Kind:      KindInfo,
		Source:    source,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// MultiAlerter fans an alert out to several alerters.
type MultiAlerter struct {
	mu       sync.RWMutex
	alerters []Alerter
}

// NewMultiAlerter creates a MultiAlerter.
func NewMultiAlerter(alerters ...Alerter) *MultiAlerter {
	return &MultiAlerter{alerters: alerters}
}

// NewFromConfig builds the configured alerters on top of the terminal one.
func NewFromConfig(cfg config.NotificationConfig, terminal Alerter) *MultiAlerter {
	mn := NewMultiAlerter(terminal)
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		mn.Add(NewWebhookAlerter(cfg.Webhook))
	}
	return mn
}

// Add adds an alerter.
func (m *MultiAlerter) Add(a Alerter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerters = append(m.alerters, a)
}

// Alert sends a to every alerter and joins their failures.
func (m *MultiAlerter) Alert(ctx context.Context, a Alert) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	m.mu.RLock()
	alerters := m.alerters
	m.mu.RUnlock()

	var errs []string
	for _, al := range alerters {
		if err := al.Alert(ctx, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("alert errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// WebhookAlerter posts alerts to an HTTP webhook.
type WebhookAlerter struct {
	url    string
	client *http.Client
}

// NewWebhookAlerter creates a WebhookAlerter.
func NewWebhookAlerter(cfg config.WebhookConfig) *WebhookAlerter {
	return &WebhookAlerter{
		url: cfg.URL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Alert posts a as JSON.
func (w *WebhookAlerter) Alert(ctx context.Context, a Alert) error {
	payload := map[string]interface{}{
		"kind":      a.Kind,
		"source":    a.Source,
		"message":   a.Message,
		"timestamp": a.Timestamp.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SignalDashboard/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// reportedError marks an error the user has already been alerted about.
type reportedError struct {
	error
}

func (r reportedError) Unwrap() error { return r.error }

// Reported marks err as already alerted so outer layers do not print it again.
func Reported(err error) error {
	if err == nil || WasReported(err) {
		return err
	}
	return reportedError{err}
}

// WasReported reports whether err carries the Reported mark.
func WasReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
