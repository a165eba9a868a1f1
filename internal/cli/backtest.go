package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"signal-dashboard/internal/backtest"
	"signal-dashboard/internal/models"
)

// paramFlags binds the backtest parameter flags onto p.
func paramFlags(fs *pflag.FlagSet, p *models.BacktestParams) {
	fs.Float64Var(&p.InitialCapital, "capital", p.InitialCapital, "initial capital")
	fs.Float64Var(&p.RiskPerTrade, "risk", p.RiskPerTrade, "risk per trade (%)")
	fs.Float64Var(&p.StopLoss, "stop-loss", p.StopLoss, "stop loss (points)")
	fs.Float64Var(&p.TakeProfit, "take-profit", p.TakeProfit, "take profit (points)")
	fs.Float64Var(&p.TickSize, "tick-size", p.TickSize, "tick size")
	fs.Float64Var(&p.TickValue, "tick-value", p.TickValue, "tick value")
	fs.Float64Var(&p.Commission, "commission", p.Commission, "commission per trade")
	fs.Float64Var(&p.Slippage, "slippage", p.Slippage, "slippage (ticks)")
}

func newBacktestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest the indicator strategy",
		Long: `Backtest the shared indicator strategy on live market data or an uploaded CSV.

Examples:
  dashboard backtest live --stock TCS --interval 1h --period 1mo
  dashboard backtest upload --file prices.csv --stop-loss 15
  dashboard backtest live --export`,
	}

	cmd.AddCommand(newBacktestLiveCmd(app))
	cmd.AddCommand(newBacktestUploadCmd(app))
	return cmd
}

func newBacktestLiveCmd(app *App) *cobra.Command {
	var (
		stock     string
		period    string
		interval  string
		exportCSV bool
		params    = models.DefaultBacktestParams()
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Backtest on data the service fetches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("stock") {
				if err := app.State.SetStock(stock); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("interval") {
				res, err := app.State.SetInterval(interval)
				if err != nil {
					return err
				}
				if res.Warning != "" && !cmd.Flags().Changed("period") {
					NewOutput(cmd).Warning("⚠ %s", res.Warning)
				}
			}
			if cmd.Flags().Changed("period") {
				if err := app.State.SetPeriod(period); err != nil {
					return err
				}
			}
			s, p, i := app.State.Live()

			in := backtest.Input{
				Source: backtest.SourceLive,
				Params: mergeParams(cmd, app.State.Params(), params),
				Live:   backtest.Live{Stock: s, Period: p, Interval: i},
			}
			return runBacktest(cmd, app, in, exportCSV)
		},
	}

	cmd.Flags().StringVarP(&stock, "stock", "s", "", "stock symbol (default: config)")
	cmd.Flags().StringVarP(&period, "period", "p", "", "history period (default: interval default)")
	cmd.Flags().StringVar(&interval, "interval", "", "sampling interval (default: config)")
	cmd.Flags().BoolVar(&exportCSV, "export", false, "save the trade list as CSV")
	paramFlags(cmd.Flags(), &params)
	return cmd
}

func newBacktestUploadCmd(app *App) *cobra.Command {
	var (
		file      string
		exportCSV bool
		params    = models.DefaultBacktestParams()
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Backtest on a local CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := backtest.Input{
				Source: backtest.SourceUpload,
				Params: mergeParams(cmd, app.State.Params(), params),
			}
			if file != "" {
				data, err := backtest.LoadFile(file)
				if err != nil {
					return err
				}
				in.File = data
				in.FileProvided = true
			}
			return runBacktest(cmd, app, in, exportCSV)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with OHLCV data")
	cmd.Flags().BoolVar(&exportCSV, "export", false, "save the trade list as CSV")
	paramFlags(cmd.Flags(), &params)
	return cmd
}

// mergeParams overlays the parameter flags the user set on base.
func mergeParams(cmd *cobra.Command, base, flags models.BacktestParams) models.BacktestParams {
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("capital", &base.InitialCapital, flags.InitialCapital)
	set("risk", &base.RiskPerTrade, flags.RiskPerTrade)
	set("stop-loss", &base.StopLoss, flags.StopLoss)
	set("take-profit", &base.TakeProfit, flags.TakeProfit)
	set("tick-size", &base.TickSize, flags.TickSize)
	set("tick-value", &base.TickValue, flags.TickValue)
	set("commission", &base.Commission, flags.Commission)
	set("slippage", &base.Slippage, flags.Slippage)
	return base
}

func runBacktest(cmd *cobra.Command, app *App, in backtest.Input, exportCSV bool) error {
	app.State.SetParams(in.Params)
	if err := app.Backtest.RunBacktest(cmd.Context(), in); err != nil {
		return err
	}
	if !exportCSV {
		return nil
	}
	path, err := app.Exporter.ExportBacktest(cmd.Context())
	if err != nil {
		return err
	}
	NewOutput(cmd).Success("✓ Exported to %s", path)
	return nil
}
