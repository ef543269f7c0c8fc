package main

import (
	"os"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

var db *gorm.DB

func initDB() {
	var err error
	db, err = app.OpenDatabase(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	if cfg.Database.AutoMigrate {
		migrate()
	}
	seedDB()
}

// migrate runs AutoMigrate one model at a time so a permission problem on one table
// does not block the rest.
func migrate() {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			logger.Warn().Err(err).Str("model", modelName(m)).Msg("migration warning")
		}
	}
}

func modelName(m any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(m); err != nil {
		return "?"
	}
	return stmt.Schema.Table
}

func seedDB() {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	if err := app.Seed(db, password); err != nil {
		logger.Warn().Err(err).Msg("seeding incomplete")
	}
	ensureUploadBase()
}

// ensureUploadBase creates the base directory for uploaded statements.
func ensureUploadBase() {
	if err := os.MkdirAll(cfg.Uploads.BaseDir, 0o755); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Uploads.BaseDir).Msg("failed to create upload base dir")
	}
}
