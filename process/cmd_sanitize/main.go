package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/process/sanitize"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	dryRun := flag.Bool("dry-run", true, "don't perform destructive actions; show what would be done")
	yes := flag.Bool("yes", false, "confirm destructive action (required to actually truncate)")
	reseed := flag.Bool("reseed", false, "after truncation, reseed roles and the admin user/profile")
	tables := flag.String("tables", "", "comma-separated tables to truncate (default: every application table)")
	flag.Parse()

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	if tool.Config.IsProduction() {
		fmt.Fprintln(os.Stderr, "refusing to sanitize a production database")
		os.Exit(2)
	}

	var wanted []string
	if strings.TrimSpace(*tables) == "" {
		if wanted, err = sanitize.ModelTables(tool.DB); err != nil {
			fmt.Fprintf(os.Stderr, "model tables: %v\n", err)
			os.Exit(1)
		}
	} else {
		var rejected []string
		wanted, rejected = sanitize.ParseTables(*tables)
		for _, r := range rejected {
			fmt.Fprintf(os.Stderr, "warning: skipping invalid table name %q\n", r)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	opts := sanitize.Options{Tables: wanted, DryRun: *dryRun, Yes: *yes, Reseed: *reseed, AdminPassword: os.Getenv("ADMIN_PASSWORD")}
	if _, err := sanitize.Run(ctx, tool.DB, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sanitize failed: %v\n", err)
		os.Exit(1)
	}
}
