package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/process/reprocess"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	userID := flag.Uint("user-id", 0, "only retry this user's uploads")
	images := flag.Bool("images-only", false, "only retry scanned images (OCR)")
	limit := flag.Int("limit", 0, "maximum uploads to retry")
	dry := flag.Bool("dry-run", true, "dry-run: parse but don't write transactions")
	flag.Parse()

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	res, err := reprocess.Run(context.Background(), tool.DB, tool.Services.Importer,
		reprocess.Options{UserID: *userID, ImagesOnly: *images, Limit: *limit, DryRun: *dry}, tool.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("retried=%d recovered=%d still_failed=%d skipped=%d created=%d\n",
		res.Retried, res.Recovered, res.StillFailed, res.Skipped, res.Created)
}
