package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability is a debt whose principal is reduced by linked expense transactions.
type Liability struct {
	ID               uint `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UserID           uint            `gorm:"index;not null"`
	Name             string          `gorm:"size:100;not null"`
	LiabilityType    string          `gorm:"size:20;default:LOAN;not null"`
	PrincipalBalance decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	InterestRate     decimal.Decimal `gorm:"type:numeric(5,2);not null"` // annual %
	MinimumPayment   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TenureMonths     *int
	StartDate        *time.Time `gorm:"type:date"`
	DueDayOfMonth    *int
	LinkedAccountID  *uint
	Notes            string `gorm:"type:text"`
}

const (
	StrategyAvalanche = "AVALANCHE"
	StrategySnowball  = "SNOWBALL"
)

// DebtPlan is the input to the payoff simulator.
type DebtPlan struct {
	ID                     uint `gorm:"primaryKey"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	UserID                 uint            `gorm:"index;not null"`
	Strategy               string          `gorm:"size:10;default:AVALANCHE;not null"`
	MonthlyAmountAvailable decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	StartDate              time.Time       `gorm:"type:date;not null"`
}
