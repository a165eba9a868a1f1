package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesTemplateAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("expected template config.toml: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:5000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.Screener.RefreshInterval != 180*time.Second {
		t.Errorf("refresh interval = %v", cfg.Screener.RefreshInterval)
	}
	if cfg.Indicators().Count() != 9 {
		t.Errorf("expected all indicators by default, got %d", cfg.Indicators().Count())
	}
	if cfg.Backtest.Params.InitialCapital != 100000 || cfg.Backtest.Params.TakeProfit != 40 {
		t.Errorf("unexpected params: %+v", cfg.Backtest.Params)
	}
	if cfg.BacktestPeriod() != "3mo" {
		t.Errorf("default daily period = %q, want 3mo", cfg.BacktestPeriod())
	}

	// The template itself must load to the same values.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Screener.RefreshInterval != cfg.Screener.RefreshInterval || again.Backtest.Stock != "RELIANCE" {
		t.Errorf("template disagrees with defaults: %+v", again)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
[server]
base_url = "http://dash.internal:8080"

[screener]
timeframe = "1h"
indicators = ["rsi", "adx"]
refresh_interval = "30s"

[backtest]
interval = "1h"
period = "2y"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_EXPORT_DIR", "/tmp/exports")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://dash.internal:8080" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if got := cfg.Indicators().Active(); len(got) != 2 || got[0] != "rsi" || got[1] != "adx" {
		t.Errorf("indicators = %v", got)
	}
	if cfg.Screener.RefreshInterval != 30*time.Second {
		t.Errorf("refresh = %v", cfg.Screener.RefreshInterval)
	}
	if cfg.BacktestPeriod() != "2y" {
		t.Errorf("period = %q", cfg.BacktestPeriod())
	}
	if cfg.Export.Dir != "/tmp/exports" {
		t.Errorf("env override not applied: %q", cfg.Export.Dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.Server.BaseURL = "localhost" }},
		{"bad timeframe", func(c *Config) { c.Screener.Timeframe = "2h" }},
		{"bad indicator", func(c *Config) { c.Screener.Indicators = []string{"ichimoku"} }},
		{"zero refresh", func(c *Config) { c.Screener.RefreshInterval = 0 }},
		{"period beyond limit", func(c *Config) { c.Backtest.Interval = "5m"; c.Backtest.Period = "1y" }},
		{"webhook without url", func(c *Config) { c.Notifications.Webhook.Enabled = true }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
