package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

// Materializes recurring transactions into ledger rows up to a horizon.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	days := flag.Int("days", 30, "how many days ahead to materialize")
	date := flag.String("date", "", "run as of this date (YYYY-MM-DD, default today)")
	flag.Parse()

	today, err := app.DateOrToday(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date: %v\n", err)
		os.Exit(2)
	}
	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	n, err := tool.Services.Materializer.Run(context.Background(), today, *days)
	if err != nil {
		tool.Logger.Fatal().Err(err).Msg("materialize failed")
	}
	fmt.Printf("Materialized %d transactions\n", n)
}
