package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner to stderr and logs the same facts.
func PrintBanner(config *Config, logger *Logger) {
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	fmt.Fprintf(os.Stderr, "%s  PERSONAL FINANCE API%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s  Ledger, budgets, debt planning, savings and investments%s\n\n", textColor, banner.ColorReset)

	scheduler := "disabled"
	if config.Scheduler.Enabled {
		scheduler = "enabled"
	}
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", serviceURL},
		{"Uploads", config.Uploads.BaseDir},
		{"Scheduler", scheduler},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("service_url", serviceURL).
		Bool("scheduler", config.Scheduler.Enabled).
		Msg("Application started")
}
