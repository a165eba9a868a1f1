// Command dashboard is the terminal client of the stock screening and
// backtesting service.
package main

import (
	"context"
	"os"

	"signal-dashboard/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Stderr))
}
