package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
)

// Sets a new password and revokes the user's refresh tokens.
func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config (optional)")
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "--username and --password are required")
		os.Exit(2)
	}
	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "password too short (min 6)")
		os.Exit(2)
	}

	tool, err := app.LoadTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(2)
	}
	log := tool.Logger

	var user models.User
	if err := tool.DB.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("user not found")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}
	var revoked int64
	err = tool.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("hashed_password", hash).Error; err != nil {
			return err
		}
		res := tx.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked = ?", user.ID, false).Update("revoked", true)
		revoked = res.RowsAffected
		return res.Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("update failed")
	}
	fmt.Printf("Password reset for user %s (%d refresh tokens revoked)\n", user.Username, revoked)
}
