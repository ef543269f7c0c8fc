package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	KindIncome   = "INCOME"
	KindExpense  = "EXPENSE"
	KindTransfer = "TRANSFER"

	DirectionOut = "OUT"
	DirectionIn  = "IN"

	ActionBuy      = "BUY"
	ActionSell     = "SELL"
	ActionDividend = "DIVIDEND"
	ActionInterest = "INTEREST"
	ActionFee      = "FEE"

	SourceManual    = "MANUAL"
	SourceImport    = "IMPORT"
	SourceSMS       = "SMS"
	SourceRecurring = "RECURRING"
)

// Transaction is one ledger row. A transfer is stored as two rows sharing TransferGroup.
type Transaction struct {
	ID                uint `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UserID            uint            `gorm:"index;not null"`
	AccountID         uint            `gorm:"index;not null"`
	Date              time.Time       `gorm:"type:date;index;not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Fee               decimal.Decimal `gorm:"type:numeric(14,2);default:0;not null"`
	Kind              string          `gorm:"size:10;index;not null"`
	CategoryID        *uint           `gorm:"index"`
	Description       string          `gorm:"size:255"`
	Tags              string          `gorm:"size:255"`
	IsRecurring       bool            `gorm:"default:false"`
	RecurringRule     map[string]any  `gorm:"serializer:json;type:jsonb"`
	SavingsGoalID     *uint           `gorm:"index"`
	LiabilityID       *uint           `gorm:"index"`
	InvestmentID      *uint           `gorm:"index"`
	InvestmentAction  *string         `gorm:"size:10"`
	TransferGroup     *uuid.UUID      `gorm:"type:uuid;index"`
	TransferAccountID *uint           `gorm:"index"`
	TransferDirection *string         `gorm:"size:3"`
	Source            string          `gorm:"size:20;default:MANUAL;not null"`
	SMSReference      string          `gorm:"column:sms_reference;size:64"`
	SMSDetectedAt     *time.Time      `gorm:"column:sms_detected_at"`
}

// IsTransferLeg reports whether the row belongs to a transfer pair.
func (t Transaction) IsTransferLeg() bool {
	return t.Kind == KindTransfer && t.TransferGroup != nil
}

// RecurringTransaction is a template materialised into Transactions on a schedule.
type RecurringTransaction struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint            `gorm:"index;not null"`
	AccountID    uint            `gorm:"index;not null"`
	Date         time.Time       `gorm:"type:date;not null"` // next due date
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Kind         string          `gorm:"size:10;not null"`
	CategoryID   *uint
	Description  string     `gorm:"size:255"`
	Frequency    string     `gorm:"size:10;default:MONTHLY;not null"`
	EndDate      *time.Time `gorm:"type:date"`
	LastExecuted *time.Time `gorm:"type:date"`
}

const (
	FrequencyDaily   = "DAILY"
	FrequencyWeekly  = "WEEKLY"
	FrequencyMonthly = "MONTHLY"
	FrequencyYearly  = "YEARLY"
)
