package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
	"github.com/Simonwafula/personal-finance-app/process/inbox"
)

// Imports statement files dropped into a directory, optionally watching it for new ones.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	dir := flag.String("dir", "inbox", "directory to scan for statements")
	processed := flag.String("processed", "", "where imported files are moved (default <dir>/processed)")
	userID := flag.Uint("user-id", 0, "owner of the imported transactions")
	accountID := flag.Uint("account-id", 0, "account the rows are imported into")
	watch := flag.Bool("watch", false, "keep watching the directory after the initial scan")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	opening := flag.String("opening-balance", "", "balance before the first row, used to infer its kind")
	firstKind := flag.String("first-kind", "", "INCOME or EXPENSE when the first row cannot be inferred")
	allowDup := flag.Bool("allow-duplicates", false, "import rows that look like existing ones")
	dryRun := flag.Bool("dry-run", false, "parse and count without writing")
	flag.Parse()

	if *userID == 0 || *accountID == 0 {
		fmt.Fprintln(os.Stderr, "--user-id and --account-id are required")
		os.Exit(2)
	}
	opts := statement.Options{FirstKind: strings.ToUpper(*firstKind), AllowDuplicates: *allowDup, DryRun: *dryRun}
	if *opening != "" {
		ob, err := decimal.NewFromString(*opening)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --opening-balance: %v\n", err)
			os.Exit(2)
		}
		opts.OpeningBalance = &ob
	}

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(1)
	}
	log := tool.Logger

	var account models.Account
	if err := tool.DB.Where("id = ? AND user_id = ?", *accountID, *userID).First(&account).Error; err != nil {
		log.Fatal().Err(err).Uint("account_id", *accountID).Uint("user_id", *userID).Msg("account not found for user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	box := inbox.New(tool.DB, tool.Services.Importer, inbox.Config{
		Dir:          *dir,
		ProcessedDir: *processed,
		UserID:       *userID,
		AccountID:    *accountID,
		Workers:      *workers,
		Options:      opts,
	}, log)
	if err := box.Preload(ctx); err != nil {
		log.Fatal().Err(err).Msg("preload failed")
	}
	stats, err := box.Scan(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}
	log.Info().Int64("imported", stats.Imported).Int64("duplicates", stats.Duplicates).
		Int64("skipped", stats.Skipped).Int64("failed", stats.Failed).Msg("Initial scan done")

	if *watch {
		if err := box.Watch(ctx); err != nil {
			log.Fatal().Err(err).Msg("watch failed")
		}
		stats = box.Stats()
		log.Info().Int64("imported", stats.Imported).Int64("failed", stats.Failed).Msg("Stopped watching")
	}
}
