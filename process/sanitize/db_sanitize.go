// Package sanitize empties application tables, for resetting demo and staging databases.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Tables []string
	// DryRun only lists the tables; Yes must also be set for anything to happen.
	DryRun        bool
	Yes           bool
	Reseed        bool
	AdminPassword string
}

// ModelTables returns the table name of every application model.
func ModelTables(db *gorm.DB) ([]string, error) {
	var out []string
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out = append(out, stmt.Schema.Table)
	}
	return out, nil
}

// ParseTables splits a comma-separated list, returning valid identifiers and rejected entries.
func ParseTables(list string) (valid, rejected []string) {
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			rejected = append(rejected, p)
			continue
		}
		valid = append(valid, p)
	}
	return valid, rejected
}

// Run truncates the requested tables that exist and returns their names. Progress is written to out.
func Run(ctx context.Context, db *gorm.DB, opts Options, out io.Writer) ([]string, error) {
	db = db.WithContext(ctx)
	var existing []string
	for _, t := range opts.Tables {
		if !nameRe.MatchString(t) {
			fmt.Fprintf(out, "skipping invalid table name %q\n", t)
			continue
		}
		var cnt int64
		if err := db.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = current_schema() AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			return nil, fmt.Errorf("look up table %s: %w", t, err)
		}
		if cnt == 0 {
			fmt.Fprintf(out, "table %s not found, skipping\n", t)
			continue
		}
		existing = append(existing, t)
	}
	if len(existing) == 0 {
		fmt.Fprintln(out, "no requested tables present in the database; nothing to do")
		return nil, nil
	}

	fmt.Fprintln(out, "Tables considered for truncation:")
	for _, t := range existing {
		fmt.Fprintf(out, " - %s\n", t)
	}
	if opts.DryRun {
		fmt.Fprintln(out, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return existing, nil
	}
	if !opts.Yes {
		fmt.Fprintln(out, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return existing, nil
	}

	quoted := make([]string, 0, len(existing))
	for _, t := range existing {
		quoted = append(quoted, `"`+t+`"`)
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	fmt.Fprintf(out, "Executing: %s\n", stmt)
	if err := db.Exec(stmt).Error; err != nil {
		return existing, fmt.Errorf("truncate: %w", err)
	}

	if opts.Reseed {
		pw := opts.AdminPassword
		if pw == "" {
			pw = "admin123"
		}
		if err := app.Seed(db, pw); err != nil {
			return existing, fmt.Errorf("reseed: %w", err)
		}
		fmt.Fprintln(out, "Reseeded roles and admin user.")
	}
	return existing, nil
}
