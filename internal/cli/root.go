package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"signal-dashboard/internal/api"
	"signal-dashboard/internal/backtest"
	"signal-dashboard/internal/config"
	"signal-dashboard/internal/export"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/notify"
	"signal-dashboard/internal/render"
	"signal-dashboard/internal/screener"
	"signal-dashboard/internal/selection"
	"signal-dashboard/internal/store"
	"signal-dashboard/internal/strategy"
	"signal-dashboard/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-03-05"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Client    api.Client
	Alerter   notify.Alerter
	State     *selection.State
	Syncer    *strategy.Syncer
	Screener  *screener.Orchestrator
	Backtest  *backtest.Orchestrator
	Exporter  *export.Exporter
	Journal   store.Journal
	View      *TerminalView
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Signal dashboard - stock screener and backtester client",
		Long: `Signal dashboard drives the stock screening and backtesting service.

It screens a universe of NSE stocks with a selectable set of technical
indicators, backtests the strategy on live or uploaded data, and exports
results as CSV.

Use 'dashboard session' for an interactive dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/signal-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("yaml", false, "output in YAML format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPeriodsCmd())
	rootCmd.AddCommand(newScreenCmd(app))
	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newStrategyCmd(app))
	rootCmd.AddCommand(newSessionCmd(app))

	return rootCmd
}

// Execute runs the root command. Errors the user was already alerted about
// are not printed again.
func Execute(ctx context.Context, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !notify.WasReported(err) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// init wires the application from configuration.
func (app *App) init(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	app.Config = cfg
	app.ConfigDir = dir

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.FilePath = cfg.Logging.FilePath
	app.Logger = logging.NewLoggerWithConfig(logCfg)

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		app.Logger = app.Logger.Level(zerolog.DebugLevel)
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))

	journal, err := store.NewSessionStore()
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to open session journal, history unavailable")
	} else {
		app.Journal = journal
	}

	out := NewOutput(cmd)
	app.View = NewTerminalView(out)
	app.Alerter = notify.NewFromConfig(cfg.Notifications, notify.NewTerminalAlerter(cmd.ErrOrStderr(), out.colorEnabled))
	app.Client = api.NewHTTPClient(api.HTTPConfig{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.Server.RequestTimeout,
	}, app.Logger)

	state, err := selection.New(selection.Options{
		Indicators: cfg.Indicators(),
		Timeframe:  cfg.Screener.Timeframe,
		Stock:      cfg.Backtest.Stock,
		Interval:   cfg.Backtest.Interval,
		Period:     cfg.BacktestPeriod(),
		Params:     cfg.Backtest.Params,
	})
	if err != nil {
		return err
	}
	app.State = state
	app.Syncer = strategy.NewSyncer(app.Client, app.Logger, cfg.Server.RequestTimeout)
	app.Syncer.Attach(cmd.Context(), state)

	app.Screener = screener.NewOrchestrator(app.Client, app.Alerter, screener.Options{
		View:            app.View,
		Journal:         app.Journal,
		Source:          state,
		RefreshInterval: cfg.Screener.RefreshInterval,
		Logger:          app.Logger,
	})
	app.Backtest = backtest.NewOrchestrator(app.Client, app.Alerter, backtest.Options{
		View:    app.View,
		Journal: app.Journal,
		Logger:  app.Logger,
	})
	app.Exporter = export.NewExporter(app.Client, app.Screener.Results(), app.Backtest.Results(),
		export.NewDirSink(cfg.Export.Dir), app.Alerter, export.Options{
			Journal: app.Journal,
			Logger:  app.Logger,
		})

	app.Logger.Debug().
		Str("base_url", cfg.Server.BaseURL).
		Str("config_dir", dir).
		Msg("Dashboard initialized")
	return nil
}

// close waits for background work and releases the journal.
func (app *App) close() error {
	if app.Syncer != nil {
		app.Syncer.Wait()
	}
	if app.Journal != nil {
		return app.Journal.Close()
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsStructured() {
				_ = output.Structured(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Signal Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsStructured() {
				return output.Structured(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsStructured() {
				_ = output.Structured(map[string]string{"path": app.ConfigDir})
			} else {
				output.Println(app.ConfigDir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				return err
			}
			if output.IsStructured() {
				return output.Structured(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Heading("Server")
	output.Printf("  Base URL:         %s\n", cfg.Server.BaseURL)
	output.Printf("  Request Timeout:  %s\n", timeoutLabel(cfg.Server.RequestTimeout))
	output.Println()

	output.Heading("Screener")
	output.Printf("  Timeframe:        %s\n", cfg.Screener.Timeframe)
	output.Printf("  Indicators:       %s\n", cfg.Indicators().CountLabel())
	output.Printf("  Refresh Interval: %s\n", cfg.Screener.RefreshInterval)
	output.Println()

	output.Heading("Backtest")
	output.Printf("  Stock:            %s\n", cfg.Backtest.Stock)
	output.Printf("  Interval:         %s\n", cfg.Backtest.Interval)
	output.Printf("  Period:           %s\n", cfg.BacktestPeriod())
	output.Printf("  Initial Capital:  %s\n", utils.FormatIndianCurrency(cfg.Backtest.Params.InitialCapital))
	output.Printf("  Stop Loss:        %s%%\n", render.Number(cfg.Backtest.Params.StopLoss))
	output.Printf("  Take Profit:      %s%%\n", render.Number(cfg.Backtest.Params.TakeProfit))
	output.Println()

	output.Heading("Export")
	output.Printf("  Directory:        %s\n", cfg.Export.Dir)
	output.Println()

	output.Heading("Notifications")
	output.Printf("  Webhook:          %v\n", cfg.Notifications.Webhook.Enabled)
}

func timeoutLabel(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}
