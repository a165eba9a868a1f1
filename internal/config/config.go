// Package config provides configuration management for the dashboard client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"signal-dashboard/internal/models"
	"signal-dashboard/internal/timeframe"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Screener      ScreenerConfig     `mapstructure:"screener"`
	Backtest      BacktestConfig     `mapstructure:"backtest"`
	Export        ExportConfig       `mapstructure:"export"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// ServerConfig locates the dashboard service.
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// RequestTimeout of 0 leaves requests unbounded.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ScreenerConfig holds the screener defaults.
type ScreenerConfig struct {
	Timeframe       string        `mapstructure:"timeframe"`
	Indicators      []string      `mapstructure:"indicators"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// BacktestConfig holds the backtest defaults.
type BacktestConfig struct {
	Stock    string                `mapstructure:"stock"`
	Stocks   []string              `mapstructure:"stocks"`
	Interval string                `mapstructure:"interval"`
	Period   string                `mapstructure:"period"`
	Params   models.BacktestParams `mapstructure:"params"`
}

// ExportConfig holds where downloaded files land.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// NotificationConfig holds alert channel configuration.
type NotificationConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// DefaultStocks is the symbol universe offered for live backtests.
var DefaultStocks = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK",
	"BAJFINANCE", "WIPRO", "SUNPHARMA", "MARUTI",
	"BHARTIARTL", "KOTAKBANK", "LT", "AXISBANK", "ITC",
}

// DefaultRefreshInterval is the auto-refresh period of the screener.
const DefaultRefreshInterval = 180 * time.Second

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/signal-dashboard"
	}
	return filepath.Join(home, ".config", "signal-dashboard")
}

func setDefaults(v *viper.Viper, configDir string) {
	params := models.DefaultBacktestParams()

	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.request_timeout", "0s")
	v.SetDefault("screener.timeframe", "1d")
	v.SetDefault("screener.indicators", models.IndicatorNames)
	v.SetDefault("screener.refresh_interval", DefaultRefreshInterval.String())
	v.SetDefault("backtest.stock", "RELIANCE")
	v.SetDefault("backtest.stocks", DefaultStocks)
	v.SetDefault("backtest.interval", "1d")
	v.SetDefault("backtest.period", "")
	v.SetDefault("backtest.params.initial_capital", params.InitialCapital)
	v.SetDefault("backtest.params.risk_per_trade", params.RiskPerTrade)
	v.SetDefault("backtest.params.stop_loss", params.StopLoss)
	v.SetDefault("backtest.params.take_profit", params.TakeProfit)
	v.SetDefault("backtest.params.tick_size", params.TickSize)
	v.SetDefault("backtest.params.tick_value", params.TickValue)
	v.SetDefault("backtest.params.commission", params.Commission)
	v.SetDefault("backtest.params.slippage", params.Slippage)
	v.SetDefault("export.dir", ".")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "dashboard.log"))
	v.SetDefault("notifications.webhook.enabled", false)
	v.SetDefault("notifications.webhook.url", "")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is read.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("DASHBOARD_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url must be an absolute URL, got %q", c.Server.BaseURL)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}

	if !timeframe.IsInterval(c.Screener.Timeframe) {
		return fmt.Errorf("screener.timeframe: unknown timeframe %q", c.Screener.Timeframe)
	}
	if _, err := models.ParseIndicators(c.Screener.Indicators); err != nil {
		return fmt.Errorf("screener.indicators: %w", err)
	}
	if c.Screener.RefreshInterval <= 0 {
		return fmt.Errorf("screener.refresh_interval must be positive")
	}

	if !timeframe.IsInterval(c.Backtest.Interval) {
		return fmt.Errorf("backtest.interval: unknown interval %q", c.Backtest.Interval)
	}
	if c.Backtest.Period != "" {
		if err := timeframe.Validate(c.Backtest.Interval, c.Backtest.Period); err != nil {
			return fmt.Errorf("backtest.period: %w", err)
		}
	}
	if c.Backtest.Params.InitialCapital <= 0 {
		return fmt.Errorf("backtest.params.initial_capital must be positive")
	}

	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return fmt.Errorf("notifications.webhook.url is required when the webhook is enabled")
	}

	return nil
}

// Indicators returns the configured default indicator selection.
func (c *Config) Indicators() models.IndicatorSelection {
	sel, err := models.ParseIndicators(c.Screener.Indicators)
	if err != nil {
		return models.AllIndicators()
	}
	return sel
}

// BacktestPeriod returns the configured period, or the resolver's default for
// the configured interval.
func (c *Config) BacktestPeriod() string {
	if c.Backtest.Period != "" {
		return c.Backtest.Period
	}
	res, err := timeframe.Resolve(c.Backtest.Interval)
	if err != nil {
		return ""
	}
	return res.DefaultKey()
}
