package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
)

// Backfills transaction links (savings contributions, investment actions, transfer pairs).
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	userID := flag.Uint("user-id", 0, "limit backfill to a specific user id")
	applySavings := flag.Bool("apply-savings", false, "recalculate savings goal current_amount from contributions")
	dryRun := flag.Bool("dry-run", false, "show what would change without writing")
	flag.Parse()

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	c, err := ledger.Backfill(context.Background(), tool.DB, tool.Logger, ledger.BackfillOptions{
		UserID:         *userID,
		RecomputeGoals: *applySavings,
		DryRun:         *dryRun,
	})
	if err != nil {
		tool.Logger.Fatal().Err(err).Msg("backfill failed")
	}
	fmt.Println("Backfill complete.")
	fmt.Printf("savings_contributions_created: %d\n", c.ContributionsCreated)
	fmt.Printf("investment_actions_set: %d\n", c.ActionsSet)
	fmt.Printf("transfer_pairs_created: %d\n", c.PairsCreated)
	fmt.Printf("transfer_pairs_updated: %d\n", c.PairsUpdated)
	fmt.Printf("savings_recalculated: %d\n", c.GoalsRecomputed)
}
