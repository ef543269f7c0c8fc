package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

var (
	cfg       *common.Config
	logger    *common.Logger
	jwtSecret []byte
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	flag.Parse()

	// .env never overrides variables that are already set.
	_ = godotenv.Load()

	var err error
	cfg, err = common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger = common.NewLogger(cfg.Logging.Level)
	jwtSecret = []byte(cfg.Auth.JWTSecret)

	// `app migrate` runs AutoMigrate and seeding, then exits.
	if flag.Arg(0) == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	common.PrintBanner(cfg, logger)
	if cfg.IsProduction() && cfg.Auth.JWTSecret == common.NewDefaultConfig().Auth.JWTSecret {
		logger.Warn().Msg("JWT_SECRET is the development default")
	}

	initDB()
	initServices()

	if cfg.Scheduler.Enabled {
		sched := startScheduler()
		defer sched.Stop()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	setupRoutes(r)

	if err := r.Run(cfg.Server.Addr()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
