package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// Imports one statement file (PDF, CSV, text or a scan) into an account.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	userID := flag.Uint("user-id", 0, "user id to import for")
	username := flag.String("username", "", "username to import for (instead of --user-id)")
	accountID := flag.Uint("account-id", 0, "account id to import into")
	accountName := flag.String("account-name", "", "account name to import into (instead of --account-id)")
	opening := flag.String("opening-balance", "", "balance before the first transaction (optional)")
	firstKind := flag.String("first-transaction-kind", "", "INCOME or EXPENSE when the first row cannot be inferred")
	allowDup := flag.Bool("allow-duplicates", false, "do not skip duplicates (by date/amount/description/kind)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing transactions")
	preview := flag.Bool("preview", false, "print the parsed rows as JSON and stop")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import_statement [flags] <statement file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts := statement.Options{FirstKind: strings.ToUpper(*firstKind), AllowDuplicates: *allowDup, DryRun: *dryRun}
	if opts.FirstKind != "" && opts.FirstKind != models.KindIncome && opts.FirstKind != models.KindExpense {
		fmt.Fprintln(os.Stderr, "--first-transaction-kind must be INCOME or EXPENSE")
		os.Exit(2)
	}
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
		os.Exit(2)
	}
	db, log := tool.DB, tool.Logger
	im := tool.Services.Importer

	if *preview {
		parsed, rows, sum, err := im.PreviewFile(path, opts)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("preview failed")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"statement_type": parsed.Type, "rows": rows, "summary": sum})
		return
	}

	var user models.User
	q := db.Where("id = ?", *userID)
	if *username != "" {
		q = db.Where("username = ?", *username)
	}
	if err := q.First(&user).Error; err != nil {
		log.Fatal().Err(err).Msg("user not found; pass --user-id or --username")
	}
	var account models.Account
	q = db.Where("user_id = ? AND id = ?", user.ID, *accountID)
	if *accountName != "" {
		q = db.Where("user_id = ? AND name = ?", user.ID, *accountName)
	}
	if err := q.First(&account).Error; err != nil {
		log.Fatal().Err(err).Msg("account not found; pass --account-id or --account-name")
	}

	upload, res, err := im.ImportFile(context.Background(), user.ID, account.ID, path, opts)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("import failed")
	}
	fmt.Printf("upload=%d parsed=%d created=%d duplicates=%d dry_run=%t\n",
		upload.ID, res.Parsed, res.Created, res.Duplicates, res.DryRun)
}
