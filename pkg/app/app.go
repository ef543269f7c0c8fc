// Package app builds the database handle and service graph shared by the API server and the
// command-line tools.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/budget"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
	"github.com/Simonwafula/personal-finance-app/pkg/ocr"
	"github.com/Simonwafula/personal-finance-app/pkg/recurring"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// Today is the current UTC date at midnight, the granularity of every ledger date.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOrToday parses a YYYY-MM-DD flag value; empty means today.
func DateOrToday(v string) (time.Time, error) {
	if v == "" {
		return Today(), nil
	}
	return time.Parse("2006-01-02", v)
}

var ErrNoDSN = errors.New("DB_DSN is not set; this project requires a Postgres DSN")

// OpenDatabase connects to Postgres with gorm logging at warn level.
func OpenDatabase(cfg common.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Services is the wired service graph. Every ledger write made through Store reaches the
// budget notifier and the activity log.
type Services struct {
	Activity      *activity.Recorder
	Notifications *notify.Service
	Budget        *budget.Notifier
	Store         *ledger.Store
	Importer      *statement.Importer
	Materializer  *recurring.Materializer
	Reminders     *recurring.Reminders
}

func NewServices(db *gorm.DB, cfg *common.Config, logger *common.Logger) *Services {
	s := &Services{Activity: activity.NewRecorder(db, logger)}
	s.Notifications = notify.NewService(db, notify.NewMailer(cfg.Mail, logger), logger)
	s.Budget = budget.NewNotifier(db, s.Notifications, cfg.Budget.Threshold, logger)
	s.Store = ledger.NewStore(db, logger, ledger.WithNotifier(s.Budget), ledger.WithActivity(s.Activity))
	reader := statement.Reader{Parser: statement.Parser{}, OCR: ocr.New(logger)}
	s.Importer = statement.NewImporter(db, s.Store, reader, logger).WithActivity(s.Activity)
	s.Materializer = recurring.NewMaterializer(db, s.Store, logger)
	s.Reminders = recurring.NewReminders(db, s.Notifications, logger)
	return s
}

// Tool is what a command-line tool needs: config, logger, database and services.
type Tool struct {
	Config   *common.Config
	Logger   *common.Logger
	DB       *gorm.DB
	Services *Services
}

// LoadTool reads .env and the TOML config, then connects to the database.
func LoadTool(configPath string) (*Tool, error) {
	_ = godotenv.Load()
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(cfg.Logging.Level)
	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &Tool{Config: cfg, Logger: logger, DB: db, Services: NewServices(db, cfg, logger)}, nil
}
