package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/budget"
	"github.com/Simonwafula/personal-finance-app/pkg/wealth"
)

// Runs the periodic checks once: budget thresholds, budgets ending soon, upcoming recurring
// transactions and, optionally, the net-worth snapshot.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	date := flag.String("date", "", "run as of this date (YYYY-MM-DD, default today)")
	threshold := flag.Float64("threshold", 0, "budget warning threshold in (0, 1] (default from config)")
	days := flag.Int("days", 3, "reminder window in days")
	snapshot := flag.Bool("snapshot", false, "also record today's net-worth snapshot")
	flag.Parse()

	today, err := app.DateOrToday(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date: %v\n", err)
		os.Exit(2)
	}
	if *threshold < 0 || *threshold > 1 {
		fmt.Fprintln(os.Stderr, "--threshold must be in (0, 1]")
		os.Exit(2)
	}
	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	svc, log := tool.Services, tool.Logger
	notifier := svc.Budget
	if *threshold > 0 {
		notifier = budget.NewNotifier(tool.DB, svc.Notifications, *threshold, log)
	}
	ctx := context.Background()

	failed := false
	report := func(name string, n int, err error) {
		if err != nil {
			failed = true
			log.Error().Err(err).Str("check", name).Msg("check failed")
			return
		}
		fmt.Printf("%s: %d\n", name, n)
	}
	n, err := notifier.CheckAll(ctx, today)
	report("budget_warnings", n, err)
	n, err = notifier.RemindEnding(ctx, today, *days)
	report("budgets_ending", n, err)
	n, err = svc.Reminders.Check(ctx, today, *days)
	report("recurring_reminders", n, err)
	if *snapshot {
		n, err = wealth.SnapshotAll(ctx, tool.DB, today)
		report("net_worth_snapshots", n, err)
	}
	if failed {
		os.Exit(1)
	}
}
