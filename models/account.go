package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountActive = "ACTIVE"
	AccountClosed = "CLOSED"
)

// Account is a bank, mobile-money, cash or similar account owned by one user.
type Account struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint            `gorm:"index;not null"`
	Name           string          `gorm:"size:100;not null"`
	AccountType    string          `gorm:"size:20;default:BANK;not null"`
	Currency       string          `gorm:"size:10;default:KES;not null"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(14,2);default:0;not null"`
	Status         string          `gorm:"size:10;default:ACTIVE;not null"`
	Institution    string          `gorm:"size:100"`
	Notes          string          `gorm:"type:text"`
}

// Category groups transactions for budgeting.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_category_user_name_kind"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_category_user_name_kind"`
	Kind      string `gorm:"size:10;not null;uniqueIndex:idx_category_user_name_kind"`
	ParentID  *uint  `gorm:"index"`
}
