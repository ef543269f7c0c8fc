// Package wealth mirrors holdings into net-worth assets and computes net worth.
package wealth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
)

var investmentAssetType = map[string]string{
	"STOCK":                "STOCK",
	"BOND":                 "BOND",
	"MMF":                  "MMF",
	"MUTUAL_FUND":          "MMF",
	"ETF":                  "STOCK",
	"TREASURY_BILL":        "BOND",
	"TREASURY_BOND":        "BOND",
	"SACCO_SHARES":         "OTHER",
	"UNIT_TRUST":           "MMF",
	"REAL_ESTATE":          "LAND",
	"CRYPTO":               "OTHER",
	"PENSION":              "PENSION",
	"INSURANCE_ENDOWMENT":  "INSURANCE",
	"INSURANCE_WHOLE_LIFE": "INSURANCE",
	"INSURANCE_EDUCATION":  "INSURANCE",
	"INSURANCE_INVESTMENT": "INSURANCE",
}

// AssetTypeFor maps an investment type onto the coarser asset type.
func AssetTypeFor(investmentType string) string {
	if t, ok := investmentAssetType[investmentType]; ok {
		return t
	}
	return "OTHER"
}

// SyncInvestmentAsset upserts the asset mirroring inv while it is active and removes it otherwise.
func SyncInvestmentAsset(tx *gorm.DB, inv *models.Investment) error {
	scope := tx.Where("user_id = ? AND source_type = ? AND source_id = ?", inv.UserID, models.AssetSourceInvestment, inv.ID)
	if inv.Status != models.InvestmentActive {
		return scope.Delete(&models.Asset{}).Error
	}

	var asset models.Asset
	res := scope.Limit(1).Find(&asset)
	if res.Error != nil {
		return res.Error
	}
	id := inv.ID
	asset.UserID = inv.UserID
	asset.SourceType = models.AssetSourceInvestment
	asset.SourceID = &id
	asset.Name = inv.Name
	asset.AssetType = AssetTypeFor(inv.InvestmentType)
	asset.CurrentValue = inv.CurrentValue().Round(2)
	asset.Notes = fmt.Sprintf("Auto-synced from Investments. Platform: %s", inv.Platform)
	if res.RowsAffected == 0 {
		return tx.Create(&asset).Error
	}
	return tx.Save(&asset).Error
}

// RemoveInvestmentAsset drops the mirror of a deleted investment.
func RemoveInvestmentAsset(tx *gorm.DB, userID, investmentID uint) error {
	return tx.Where("user_id = ? AND source_type = ? AND source_id = ?", userID, models.AssetSourceInvestment, investmentID).
		Delete(&models.Asset{}).Error
}
