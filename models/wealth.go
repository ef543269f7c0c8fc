package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AssetSourceManual     = "MANUAL"
	AssetSourceAccount    = "ACCOUNT"
	AssetSourceInvestment = "INVESTMENT"
)

// Asset counts toward net worth. Rows with a SourceID mirror another record.
type Asset struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint            `gorm:"not null;uniqueIndex:idx_asset_source,where:source_id IS NOT NULL"`
	Name         string          `gorm:"size:100;not null"`
	AssetType    string          `gorm:"size:20;default:OTHER;not null"`
	CurrentValue decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	Currency     string          `gorm:"size:10;default:KES"`
	Notes        string          `gorm:"type:text"`
	SourceType   string          `gorm:"size:20;default:MANUAL;not null;uniqueIndex:idx_asset_source,where:source_id IS NOT NULL"`
	SourceID     *uint           `gorm:"uniqueIndex:idx_asset_source,where:source_id IS NOT NULL"`
}

type NetWorthSnapshot struct {
	ID               uint `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UserID           uint            `gorm:"not null;uniqueIndex:idx_snapshot_user_date"`
	Date             time.Time       `gorm:"type:date;not null;uniqueIndex:idx_snapshot_user_date"`
	TotalAssets      decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	TotalLiabilities decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	NetWorth         decimal.Decimal `gorm:"type:numeric(16,2);not null"`
}
