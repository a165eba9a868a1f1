package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Signal Dashboard Configuration

[server]
# Base URL of the dashboard service
base_url = "http://localhost:5000"
# Per-request timeout (e.g., "30s"); "0s" waits indefinitely
request_timeout = "0s"

[screener]
# Default timeframe: 1m, 5m, 15m, 30m, 1h, 1d
timeframe = "1d"
# Indicators enabled at start
indicators = ["rsi", "macd", "bollinger", "stochastic", "adx", "volume", "cci", "willr", "mfi"]
# Auto-refresh period
refresh_interval = "3m"

[backtest]
stock = "RELIANCE"
interval = "1d"
# Leave empty to use the middle valid period for the interval
period = ""

[backtest.params]
initial_capital = 100000.0
risk_per_trade = 2.0
stop_loss = 20.0
take_profit = 40.0
tick_size = 0.05
tick_value = 1.0
commission = 20.0
slippage = 1.0

[export]
# Directory for downloaded CSV files
dir = "."

[logging]
# Log level: debug, info, warn, error
level = "info"
# Also write a rotating log file
file = false

[notifications.webhook]
enabled = false
url = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
