package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	admin := flag.Bool("admin", false, "give the user the administrator role")
	email := flag.String("email", "", "profile email address")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: create_user [--admin] [--email addr] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	db, log := tool.DB, tool.Logger

	roleName := models.RoleUser
	if *admin {
		roleName = models.RoleAdministrator
	}
	role := models.Role{Name: roleName}
	if err := db.Where(models.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
		log.Fatal().Err(err).Str("role", roleName).Msg("failed to ensure role")
	}

	var existing models.User
	if res := db.Where("username = ?", username).Limit(1).Find(&existing); res.Error == nil && res.RowsAffected > 0 {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		return
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}
	rid := role.ID
	user := models.User{Username: username, HashedPassword: hpw, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	prof := models.Profile{UserID: user.ID, Name: username, Email: *email, Active: true, EmailBudgetAlerts: true, EmailRecurringReminders: true}
	if err := db.Create(&prof).Error; err != nil {
		log.Warn().Err(err).Msg("failed to create profile")
	}
	fmt.Printf("created user %s id=%d role=%s\n", username, user.ID, roleName)
}
