package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/models"
	"signal-dashboard/internal/timeframe"
)

func newScreenCmd(app *App) *cobra.Command {
	var (
		tf         string
		indicators []string
		watch      bool
		exportCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen the stock universe",
		Long: `Screen the configured stock universe with the selected indicators.

With --watch the screen is repeated every refresh interval until interrupted.

Examples:
  dashboard screen
  dashboard screen --timeframe 1h --indicators rsi,macd,adx
  dashboard screen --watch
  dashboard screen --export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("timeframe") {
				if err := app.State.SetTimeframe(tf); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("indicators") {
				sel, err := models.ParseIndicators(splitList(indicators))
				if err != nil {
					return err
				}
				app.State.SetIndicators(sel)
			}

			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				output := NewOutput(cmd)
				if !output.IsStructured() {
					output.Info("Auto refresh every %s. Press Ctrl+C to stop.", FormatDuration(app.Config.Screener.RefreshInterval))
				}
				app.Screener.SetAutoRefresh(ctx, true)
				app.Screener.Wait()
				return nil
			}

			if err := app.Screener.RunScreen(cmd.Context(), app.State.Indicators(), app.State.Timeframe()); err != nil {
				return err
			}

			if exportCSV {
				path, err := app.Exporter.ExportScreener(cmd.Context())
				if err != nil {
					return err
				}
				NewOutput(cmd).Success("✓ Exported to %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tf, "timeframe", "t", "", "screening timeframe ("+strings.Join(timeframe.ScreenerTimeframes(), ", ")+")")
	cmd.Flags().StringSliceVarP(&indicators, "indicators", "i", nil, "indicators to enable (default: config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep screening every refresh interval")
	cmd.Flags().BoolVar(&exportCSV, "export", false, "download the results as CSV")

	return cmd
}
