package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/timeframe"
)

type periodsDocument struct {
	Interval string             `json:"interval" yaml:"interval"`
	Label    string             `json:"label" yaml:"label"`
	MaxDays  *int               `json:"max_days" yaml:"max_days"`
	Options  []timeframe.Option `json:"options" yaml:"options"`
	Default  string             `json:"default" yaml:"default"`
	Warning  string             `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func newPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "periods [interval]",
		Short: "Show the history periods an interval can request",
		Long: `Show which history periods the data provider serves at an interval.

Without an argument every interval and its limit is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 0 {
				return listIntervals(output)
			}

			res, err := timeframe.Resolve(args[0])
			if err != nil {
				return err
			}
			if output.IsStructured() {
				return output.Structured(periodsDocument{
					Interval: res.Limit.Interval,
					Label:    res.Limit.Label,
					MaxDays:  res.Limit.MaxDays,
					Options:  res.Options,
					Default:  res.DefaultKey(),
					Warning:  res.Warning,
				})
			}

			output.Heading("%s", res.Limit.Label)
			if res.Warning != "" {
				output.Warning("⚠ %s", res.Warning)
			}
			table := NewTable(output, "Period", "Label", "Days", "")
			for _, o := range res.Options {
				mark := ""
				if o.Key == res.DefaultKey() {
					mark = output.DimText("default")
				}
				table.AddRow(o.Key, o.Label, strconv.Itoa(o.Days), mark)
			}
			table.Render()
			return nil
		},
	}
}

func listIntervals(output *Output) error {
	limits := timeframe.Intervals()
	if output.IsStructured() {
		docs := make([]periodsDocument, 0, len(limits))
		for _, l := range limits {
			res, err := timeframe.Resolve(l.Interval)
			if err != nil {
				return err
			}
			docs = append(docs, periodsDocument{
				Interval: l.Interval,
				Label:    l.Label,
				MaxDays:  l.MaxDays,
				Options:  res.Options,
				Default:  res.DefaultKey(),
				Warning:  res.Warning,
			})
		}
		return output.Structured(docs)
	}

	table := NewTable(output, "Interval", "Label", "Max History")
	for _, l := range limits {
		history := "unlimited"
		if l.MaxPeriodLabel != nil {
			history = *l.MaxPeriodLabel
		}
		table.AddRow(l.Interval, l.Label, history)
	}
	table.Render()

	keys := make([]string, 0, len(timeframe.Periods()))
	for _, o := range timeframe.Periods() {
		keys = append(keys, o.Key)
	}
	output.Println()
	output.Dim("Periods: %s", strings.Join(keys, ", "))
	return nil
}
