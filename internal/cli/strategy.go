package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/models"
)

func newStrategyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Manage the shared indicator strategy",
		Long: `Show or replace the indicator set shared by the screener and backtester.

The selection is pushed to the service in the background.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current indicator selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			showIndicators(NewOutput(cmd), app.State.Indicators())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <indicator>...",
		Short: "Enable exactly the named indicators",
		Example: `  dashboard strategy set rsi macd adx
  dashboard strategy set all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := models.ParseIndicators(splitList(args))
			if err != nil {
				return err
			}
			app.State.PublishIndicators(sel)
			// Flush the push before the command exits.
			app.Syncer.Wait()

			output := NewOutput(cmd)
			if _, failed := app.Syncer.Stats(); failed > 0 {
				output.Warning("⚠ Strategy could not be synced with the service")
			}
			showIndicators(output, sel)
			return nil
		},
	})

	return cmd
}

func showIndicators(output *Output, sel models.IndicatorSelection) {
	if output.IsStructured() {
		_ = output.Structured(sel.Map())
		return
	}
	output.Heading("Indicators")
	for _, name := range models.IndicatorNames {
		on, _ := sel.Get(name)
		mark := output.DimText("○")
		if on {
			mark = output.ColoredString(ColorGreen, "●")
		}
		output.Printf("  %s %s\n", mark, name)
	}
	output.Dim("%s", sel.CountLabel())
}

func indicatorsLine(sel models.IndicatorSelection) string {
	if sel.Count() == 0 {
		return "none"
	}
	return fmt.Sprintf("%v", sel.Active())
}
