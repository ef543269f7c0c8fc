package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ContributionManual    = "MANUAL"
	ContributionAutomatic = "AUTOMATIC"
)

// SavingsGoal keeps CurrentAmount equal to the sum of its contributions.
type SavingsGoal struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          uint            `gorm:"index;not null"`
	Name            string          `gorm:"size:200;not null"`
	TargetAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CurrentAmount   decimal.Decimal `gorm:"type:numeric(14,2);default:0;not null"`
	TargetDate      *time.Time      `gorm:"type:date"`
	LinkedAccountID *uint
	Description     string          `gorm:"type:text"`
	Emoji           string          `gorm:"size:10"`
	InterestRate    decimal.Decimal `gorm:"type:numeric(5,2);default:0;not null"`
}

// ProgressPercentage is capped at 100.
func (g SavingsGoal) ProgressPercentage() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	return decimal.Min(p, decimal.NewFromInt(100)).Round(2)
}

func (g SavingsGoal) RemainingAmount() decimal.Decimal {
	return decimal.Max(decimal.Zero, g.TargetAmount.Sub(g.CurrentAmount))
}

// GoalContribution is at most one per transaction.
type GoalContribution struct {
	ID               uint `gorm:"primaryKey"`
	CreatedAt        time.Time
	GoalID           uint            `gorm:"index;not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ContributionType string          `gorm:"size:10;default:MANUAL;not null"`
	Date             time.Time       `gorm:"type:date;not null"`
	Notes            string          `gorm:"type:text"`
	TransactionID    *uint           `gorm:"uniqueIndex"`
}
