package models

// ScreenRequest is the body of POST /api/screen.
type ScreenRequest struct {
	Indicators IndicatorSelection `json:"indicators"`
	Timeframe  string             `json:"timeframe"`
}

// ScreenResponse is the reply of POST /api/screen.
type ScreenResponse struct {
	Success   bool             `json:"success"`
	Results   []ScreenerResult `json:"results,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Timeframe string           `json:"timeframe,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// StrategyRequest is the body of POST /api/update-strategy.
type StrategyRequest struct {
	Indicators IndicatorSelection `json:"indicators"`
}

// BacktestRequest is the body of POST /api/backtest. Live runs carry stock,
// period and interval; uploaded runs carry csv_data.
type BacktestRequest struct {
	Params   BacktestParams `json:"params"`
	Stock    string         `json:"stock,omitempty"`
	Period   string         `json:"period,omitempty"`
	Interval string         `json:"interval,omitempty"`
	CSVData  *string        `json:"csv_data,omitempty"`
}

// BacktestResponse is the reply of POST /api/backtest.
type BacktestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	BacktestResult
}

// ExportRequest is the body of POST /api/export-csv.
type ExportRequest struct {
	Results []ScreenerResult `json:"results"`
}
