package models

import "time"

// Profile represents a user's profile (one-to-one with User)
type Profile struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	Active    bool       `gorm:"default:true;not null"`
	UserID    uint       `gorm:"uniqueIndex;not null"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name      string     `gorm:"size:255;not null"`
	Email     string     `gorm:"size:255"`
	Phone     string     `gorm:"size:64"`
	Currency  string     `gorm:"size:10;default:KES"`
	// Email preferences; budget and recurring alerts need EmailNotifications as well.
	EmailNotifications      bool `gorm:"default:false"`
	EmailBudgetAlerts       bool `gorm:"not null"`
	EmailRecurringReminders bool `gorm:"not null"`
}

// WantsEmail reports whether the profile opted into email for a notification category.
func (p Profile) WantsEmail(category string) bool {
	if !p.EmailNotifications || p.Email == "" {
		return false
	}
	switch category {
	case NotificationCategoryBudget:
		return p.EmailBudgetAlerts
	case NotificationCategoryRecurring:
		return p.EmailRecurringReminders
	}
	return true
}
