package models

import "time"

const (
	LevelInfo    = "INFO"
	LevelSuccess = "SUCCESS"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"

	NotificationCategoryBudget    = "budget"
	NotificationCategoryRecurring = "recurring-due"
)

type Notification struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"size:200;not null;index"`
	Message   string `gorm:"type:text"`
	Level     string `gorm:"size:10;default:INFO;not null"`
	IsRead    bool   `gorm:"default:false"`
	Category  string `gorm:"size:50"`
	LinkURL   string `gorm:"size:255"`
	EmailSent bool   `gorm:"default:false"`
}
