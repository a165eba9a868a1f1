package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"signal-dashboard/internal/backtest"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/notify"
)

const sessionHelp = `Commands:
  status                      show the current selections
  toggle <indicator>          flip one indicator
  indicators <name>...        enable exactly the named indicators
  timeframe <tf>              set the screener timeframe
  screen                      run the screener in the background
  auto on|off                 toggle auto refresh
  stock <symbol>              set the backtest stock
  interval <interval>         set the backtest interval
  period <period>             set the backtest period
  backtest [live]             backtest on live data
  backtest upload <file>      backtest on a CSV file
  wait                        wait for background runs to finish
  export screener|backtest    save the last results as CSV
  history                     show this session's runs
  help                        show this help
  quit                        leave the session`

func newSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive dashboard session",
		Long: `Start an interactive session. Selections persist between commands,
auto refresh runs in the background, and the last screener and backtest
results stay available for export.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := &session{app: app, output: NewOutput(cmd)}
			defer func() {
				app.Screener.SetAutoRefresh(ctx, false)
				s.runs.Wait()
				app.Screener.Wait()
			}()
			return s.run(ctx, bufio.NewReader(cmd.InOrStdin()))
		},
	}
}

type session struct {
	app    *App
	output *Output
	// runs tracks screens and backtests started from the prompt. Only the
	// prompt goroutine adds to it or waits on it.
	runs conc.WaitGroup
}

func (s *session) run(ctx context.Context, in *bufio.Reader) error {
	s.output.Heading("Signal Dashboard")
	s.output.Dim("Type 'help' for commands.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := in.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		s.output.Printf("> ")
		select {
		case <-ctx.Done():
			s.output.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			if err := s.dispatch(ctx, fields[0], fields[1:]); err != nil {
				logger := logging.FromContext(ctx)
				logger.Debug().Err(err).Str("command", fields[0]).Msg("Session command failed")
				if !notify.WasReported(err) {
					s.output.Warning("%s", apperrors.UserMessage(err))
				}
			}
		}
	}
}

func (s *session) dispatch(ctx context.Context, name string, args []string) error {
	app := s.app
	switch name {
	case "help":
		s.output.Println(sessionHelp)

	case "status":
		s.status()

	case "toggle":
		if len(args) != 1 {
			return usage("toggle <indicator>")
		}
		sel := app.State.Indicators()
		on, err := sel.Get(args[0])
		if err != nil {
			return err
		}
		if err := app.State.SetIndicator(args[0], !on); err != nil {
			return err
		}
		s.output.Dim("%s", app.State.Indicators().CountLabel())

	case "indicators":
		sel, err := models.ParseIndicators(splitList(args))
		if err != nil {
			return err
		}
		app.State.SetIndicators(sel)
		s.output.Dim("%s", sel.CountLabel())

	case "timeframe":
		if len(args) != 1 {
			return usage("timeframe <tf>")
		}
		return app.State.SetTimeframe(args[0])

	case "screen":
		if app.Screener.Loading() {
			s.output.Dim("A screen is already running; the newest one wins.")
		}
		sel, tf := app.State.Indicators(), app.State.Timeframe()
		s.background(ctx, "screen", func() error {
			return app.Screener.RunScreen(ctx, sel, tf)
		})

	case "wait":
		s.runs.Wait()

	case "auto":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return usage("auto on|off")
		}
		app.Screener.SetAutoRefresh(ctx, args[0] == "on")
		return app.Alerter.Alert(ctx, notify.InfoAlert("screener", "Auto refresh %s", app.Screener.State()))

	case "stock":
		if len(args) != 1 {
			return usage("stock <symbol>")
		}
		return app.State.SetStock(strings.ToUpper(args[0]))

	case "interval":
		if len(args) != 1 {
			return usage("interval <interval>")
		}
		res, err := app.State.SetInterval(args[0])
		if err != nil {
			return err
		}
		if res.Warning != "" {
			s.output.Warning("⚠ %s", res.Warning)
		}
		s.output.Dim("Period reset to %s", res.DefaultKey())

	case "period":
		if len(args) != 1 {
			return usage("period <period>")
		}
		return app.State.SetPeriod(args[0])

	case "backtest":
		return s.backtest(ctx, args)

	case "export":
		return s.export(ctx, args)

	case "history":
		return s.history(ctx)

	default:
		return apperrors.NewValidationError("command", name, fmt.Sprintf("unknown command %q, type 'help'", name))
	}
	return nil
}

func (s *session) backtest(ctx context.Context, args []string) error {
	source := backtest.SourceLive
	if len(args) > 0 {
		parsed, err := backtest.ParseSource(args[0])
		if err != nil {
			return err
		}
		source = parsed
	}

	in := backtest.Input{Source: source, Params: s.app.State.Params()}
	switch source {
	case backtest.SourceLive:
		stock, period, interval := s.app.State.Live()
		in.Live = backtest.Live{Stock: stock, Period: period, Interval: interval}
	case backtest.SourceUpload:
		if len(args) > 1 {
			data, err := backtest.LoadFile(args[1])
			if err != nil {
				return err
			}
			in.File = data
			in.FileProvided = true
		}
	}
	s.background(ctx, "backtest", func() error {
		return s.app.Backtest.RunBacktest(ctx, in)
	})
	return nil
}

// background runs fn off the prompt. The orchestrators alert on failure, so
// the error is only logged.
func (s *session) background(ctx context.Context, name string, fn func() error) {
	s.runs.Go(func() {
		if err := fn(); err != nil {
			logger := logging.FromContext(ctx)
			logger.Debug().Err(err).Str("command", name).Msg("Session run failed")
		}
	})
}

func (s *session) export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("export screener|backtest")
	}
	var (
		path string
		err  error
	)
	switch args[0] {
	case "screener":
		path, err = s.app.Exporter.ExportScreener(ctx)
	case "backtest":
		path, err = s.app.Exporter.ExportBacktest(ctx)
	default:
		return usage("export screener|backtest")
	}
	if err != nil {
		return err
	}
	s.output.Success("✓ Exported to %s", path)
	return nil
}

func (s *session) history(ctx context.Context) error {
	if s.app.Journal == nil {
		s.output.Dim("History is unavailable.")
		return nil
	}
	runs, err := s.app.Journal.Recent(ctx, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		s.output.Dim("No runs yet.")
		return nil
	}
	table := NewTable(s.output, "#", "Kind", "Started", "Duration", "Outcome", "Items", "Message")
	for _, r := range runs {
		table.AddRow(
			fmt.Sprintf("%d", r.Generation),
			string(r.Kind),
			FormatClock(r.StartedAt),
			FormatDuration(r.Duration),
			string(r.Outcome),
			fmt.Sprintf("%d", r.Items),
			TruncateString(r.Message, 40),
		)
	}
	table.Render()
	return nil
}

func (s *session) status() {
	app := s.app
	stock, period, interval := app.State.Live()
	s.output.Heading("Session")
	s.output.Printf("  Indicators:   %s (%s)\n", indicatorsLine(app.State.Indicators()), app.State.Indicators().CountLabel())
	s.output.Printf("  Timeframe:    %s\n", app.State.Timeframe())
	s.output.Printf("  Auto refresh: %s\n", app.Screener.State())
	screens := app.Screener.Results()
	s.output.Printf("  Screens:      %d issued, %d in flight\n", screens.Issued(), screens.InFlight())
	backtests := app.Backtest.Results()
	s.output.Printf("  Backtests:    %d issued, %d in flight\n", backtests.Issued(), backtests.InFlight())
	if at, ok := app.Screener.LastRefreshed(); ok {
		s.output.Printf("  Last screen:  %s\n", FormatClock(at))
	}
	s.output.Printf("  Backtest:     %s %s @ %s\n", stock, period, interval)
}

func usage(text string) error {
	return apperrors.NewValidationError("usage", text, "usage: "+text)
}
