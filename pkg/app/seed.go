package app

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
)

// AdminUsername is the account created by Seed.
const AdminUsername = "admin"

// Seed ensures the default roles, the admin user and its profile exist. An existing admin keeps
// its password. Safe to call repeatedly.
func Seed(db *gorm.DB, adminPassword string) error {
	for _, r := range models.DefaultRoles() {
		role := r
		if err := db.Where(models.Role{Name: role.Name}).Attrs(models.Role{Description: role.Description}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
		return fmt.Errorf("find administrator role: %w", err)
	}
	var admin models.User
	res := db.Where("username = ?", AdminUsername).Limit(1).Find(&admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		rid := role.ID
		admin = models.User{Username: AdminUsername, RoleID: &rid, HashedPassword: hashed}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
	}

	profile := models.Profile{UserID: admin.ID}
	err := db.Where(models.Profile{UserID: admin.ID}).
		Attrs(models.Profile{Name: "Administrator", Email: "admin@example.com", Active: true, EmailBudgetAlerts: true, EmailRecurringReminders: true}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return fmt.Errorf("create admin profile: %w", err)
	}
	return nil
}
