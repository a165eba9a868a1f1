// Package api provides the HTTP client for the dashboard service endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
)

// Endpoint paths.
const (
	PathScreen         = "/api/screen"
	PathUpdateStrategy = "/api/update-strategy"
	PathBacktest       = "/api/backtest"
	PathExportCSV      = "/api/export-csv"
)

// Client defines the dashboard service operations.
type Client interface {
	Screen(ctx context.Context, req models.ScreenRequest) ([]models.ScreenerResult, error)
	UpdateStrategy(ctx context.Context, req models.StrategyRequest) error
	Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error)
	ExportCSV(ctx context.Context, req models.ExportRequest) (io.ReadCloser, error)
}

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL string
	// Timeout of 0 means no client-side timeout.
	Timeout time.Duration
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a new HTTPClient.
func NewHTTPClient(cfg HTTPConfig, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logging.WithOperation(logger, "api"),
	}
}

// envelope is the success/error part every JSON reply carries.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// post sends body as JSON and returns the open response. Non-nil errors are
// always TransportErrors.
func (c *HTTPClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTransportError(path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	logging.LogAPICall(c.logger, http.MethodPost, path, time.Since(start), err)
	if err != nil {
		return nil, apperrors.NewTransportError(path, err)
	}
	return resp, nil
}

// decode reads a JSON reply into out and turns success=false or an
// undecodable error status into an ApplicationError.
func decode(path string, resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 300 {
			return apperrors.NewApplicationError(path, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return apperrors.NewApplicationError(path, resp.StatusCode, fmt.Sprintf("invalid response: %v", err))
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return apperrors.NewApplicationError(path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return apperrors.NewApplicationError(path, resp.StatusCode, fmt.Sprintf("invalid response: %v", err))
		}
	}
	return nil
}

// Screen runs the screener with the given indicators and timeframe.
func (c *HTTPClient) Screen(ctx context.Context, req models.ScreenRequest) ([]models.ScreenerResult, error) {
	resp, err := c.post(ctx, PathScreen, req)
	if err != nil {
		return nil, err
	}

	var out models.ScreenResponse
	if err := decode(PathScreen, resp, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []models.ScreenerResult{}
	}
	return out.Results, nil
}

// UpdateStrategy pushes the indicator selection. The reply body is ignored;
// only transport failures and error statuses are reported.
func (c *HTTPClient) UpdateStrategy(ctx context.Context, req models.StrategyRequest) error {
	resp, err := c.post(ctx, PathUpdateStrategy, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return apperrors.NewApplicationError(PathUpdateStrategy, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// Backtest runs a backtest and returns its metrics and trades.
func (c *HTTPClient) Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	resp, err := c.post(ctx, PathBacktest, req)
	if err != nil {
		return nil, err
	}

	var out models.BacktestResponse
	if err := decode(PathBacktest, resp, &out); err != nil {
		return nil, err
	}
	result := out.BacktestResult
	if result.Trades == nil {
		result.Trades = []models.Trade{}
	}
	return &result, nil
}

// ExportCSV asks the service to render results as CSV. The caller must close
// the returned body.
func (c *HTTPClient) ExportCSV(ctx context.Context, req models.ExportRequest) (io.ReadCloser, error) {
	resp, err := c.post(ctx, PathExportCSV, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg := "Error exporting CSV"
		var env envelope
		if data, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(data, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return nil, apperrors.NewApplicationError(PathExportCSV, resp.StatusCode, msg)
	}
	return resp.Body, nil
}
