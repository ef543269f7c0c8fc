package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvestmentActive  = "ACTIVE"
	InvestmentSold    = "SOLD"
	InvestmentMatured = "MATURED"
)

// Investment is a holding. With Quantity == 1 the position is valued as a lump in CurrentPrice.
type Investment struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint            `gorm:"index;not null"`
	Name           string          `gorm:"size:200;not null"`
	Symbol         string          `gorm:"size:50"`
	InvestmentType string          `gorm:"size:25;default:OTHER;not null"`
	PurchaseDate   time.Time       `gorm:"type:date;not null"`
	PurchasePrice  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Quantity       decimal.Decimal `gorm:"type:numeric(14,4);default:1;not null"`
	PurchaseFees   decimal.Decimal `gorm:"type:numeric(10,2);default:0;not null"`
	CurrentPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	InterestRate   decimal.Decimal `gorm:"type:numeric(6,3);default:0;not null"`
	MaturityDate   *time.Time      `gorm:"type:date"`
	Platform       string          `gorm:"size:100"`
	Notes          string          `gorm:"type:text"`
	Status         string          `gorm:"size:10;default:ACTIVE;not null"`
}

func (i Investment) TotalInvested() decimal.Decimal {
	return i.PurchasePrice.Mul(i.Quantity).Add(i.PurchaseFees)
}

func (i Investment) CurrentValue() decimal.Decimal {
	return i.CurrentPrice.Mul(i.Quantity)
}

func (i Investment) GainLoss() decimal.Decimal {
	return i.CurrentValue().Sub(i.TotalInvested())
}

func (i Investment) GainLossPercentage() decimal.Decimal {
	invested := i.TotalInvested()
	if invested.IsZero() {
		return decimal.Zero
	}
	return i.GainLoss().Div(invested).Mul(decimal.NewFromInt(100)).Round(2)
}
