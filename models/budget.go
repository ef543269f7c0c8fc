package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget covers an inclusive date range.
type Budget struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint         `gorm:"index;not null"`
	Name       string       `gorm:"size:100;not null"`
	PeriodType string       `gorm:"size:10;default:MONTHLY;not null"`
	StartDate  time.Time    `gorm:"type:date;not null"`
	EndDate    time.Time    `gorm:"type:date;not null"`
	Notes      string       `gorm:"type:text"`
	Lines      []BudgetLine `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE;"`
}

type BudgetLine struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	BudgetID      uint            `gorm:"not null;uniqueIndex:idx_budget_line_category"`
	CategoryID    uint            `gorm:"not null;uniqueIndex:idx_budget_line_category"`
	Category      Category        `gorm:"foreignKey:CategoryID" json:"-"`
	PlannedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}
