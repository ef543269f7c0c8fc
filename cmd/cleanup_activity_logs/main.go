package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

// Deletes activity logs older than the retention window.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	days := flag.Int("days", activity.RetentionDays, "retention window in days")
	flag.Parse()
	if *days <= 0 {
		fmt.Fprintln(os.Stderr, "--days must be positive")
		os.Exit(2)
	}

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	n, err := tool.Services.Activity.Cleanup(context.Background(), time.Now(), *days)
	if err != nil {
		tool.Logger.Fatal().Err(err).Msg("cleanup failed")
	}
	fmt.Printf("Deleted %d activity logs.\n", n)
}
