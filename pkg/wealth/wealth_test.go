package wealth

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAssetTypeFor(t *testing.T) {
	assert.Equal(t, "MMF", AssetTypeFor("UNIT_TRUST"))
	assert.Equal(t, "INSURANCE", AssetTypeFor("INSURANCE_EDUCATION"))
	assert.Equal(t, "OTHER", AssetTypeFor("SOMETHING_NEW"))
}

func TestSyncInvestmentAssetLifecycle(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "investor")
	inv := models.Investment{
		UserID: u.ID, Name: "Safaricom", InvestmentType: "STOCK", PurchaseDate: time.Now(),
		PurchasePrice: d("20"), Quantity: d("100"), CurrentPrice: d("25"), Platform: "CDS", Status: models.InvestmentActive,
	}
	require.NoError(t, db.Create(&inv).Error)

	require.NoError(t, SyncInvestmentAsset(db, &inv))
	var assets []models.Asset
	require.NoError(t, db.Find(&assets).Error)
	require.Len(t, assets, 1)
	assert.True(t, d("2500").Equal(assets[0].CurrentValue))
	assert.Equal(t, "STOCK", assets[0].AssetType)
	assert.Contains(t, assets[0].Notes, "Platform: CDS")

	inv.CurrentPrice = d("30")
	require.NoError(t, SyncInvestmentAsset(db, &inv))
	require.NoError(t, db.Find(&assets).Error)
	require.Len(t, assets, 1)
	assert.True(t, d("3000").Equal(assets[0].CurrentValue))

	inv.Status = models.InvestmentSold
	require.NoError(t, SyncInvestmentAsset(db, &inv))
	var n int64
	require.NoError(t, db.Model(&models.Asset{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestComputeAndSnapshot(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	u := testdb.User(t, db, "saver")
	bank := testdb.Account(t, db, u.ID, "Bank")
	card := testdb.Account(t, db, u.ID, "Card")
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Model(&bank).Update("opening_balance", d("1000")).Error)
	rows := []models.Transaction{
		{UserID: u.ID, AccountID: bank.ID, Date: day, Amount: d("500"), Kind: models.KindIncome},
		{UserID: u.ID, AccountID: bank.ID, Date: day, Amount: d("200"), Fee: d("10"), Kind: models.KindExpense},
		{UserID: u.ID, AccountID: card.ID, Date: day, Amount: d("300"), Kind: models.KindExpense},
	}
	require.NoError(t, db.Create(&rows).Error)
	require.NoError(t, db.Create(&models.Asset{UserID: u.ID, Name: "Plot", AssetType: "LAND", CurrentValue: d("5000")}).Error)
	require.NoError(t, db.Create(&models.SavingsGoal{UserID: u.ID, Name: "Trip", TargetAmount: d("900"), CurrentAmount: d("400")}).Error)
	require.NoError(t, db.Create(&models.Liability{UserID: u.ID, Name: "Loan", PrincipalBalance: d("2000"), InterestRate: d("12"), MinimumPayment: d("100")}).Error)

	bal, err := AccountBalance(ctx, db, bank.ID)
	require.NoError(t, err)
	assert.True(t, d("1290").Equal(bal), bal.String())

	nw, err := Compute(ctx, db, u.ID)
	require.NoError(t, err)
	assert.True(t, d("6690").Equal(nw.TotalAssets), nw.TotalAssets.String())
	assert.True(t, d("2300").Equal(nw.TotalLiabilities), nw.TotalLiabilities.String())
	assert.True(t, d("4390").Equal(nw.NetWorth), nw.NetWorth.String())
	assert.True(t, d("300").Equal(nw.Breakdown.AccountOverdrafts))

	_, err = Snapshot(ctx, db, u.ID, day)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Asset{}).Where("user_id = ?", u.ID).Update("current_value", d("6000")).Error)
	snap, err := Snapshot(ctx, db, u.ID, day)
	require.NoError(t, err)
	assert.True(t, d("5390").Equal(snap.NetWorth))

	var count int64
	require.NoError(t, db.Model(&models.NetWorthSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
