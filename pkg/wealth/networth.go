package wealth

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
)

// Breakdown itemises the components of NetWorth.
type Breakdown struct {
	Assets            decimal.Decimal `json:"assets"`
	SavingsGoals      decimal.Decimal `json:"savings_goals"`
	AccountBalances   decimal.Decimal `json:"account_balances"`
	Loans             decimal.Decimal `json:"liabilities_loans"`
	AccountOverdrafts decimal.Decimal `json:"account_overdrafts"`
}

type NetWorth struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetWorth         decimal.Decimal `json:"net_worth"`
	Breakdown        Breakdown       `json:"breakdown"`
}

// AccountBalance is the opening balance plus the signed effect of every row on the account.
func AccountBalance(ctx context.Context, db *gorm.DB, accountID uint) (decimal.Decimal, error) {
	var acct models.Account
	if err := db.WithContext(ctx).First(&acct, accountID).Error; err != nil {
		return decimal.Zero, err
	}
	flows, err := accountFlows(db.WithContext(ctx), acct.UserID, []uint{accountID})
	if err != nil {
		return decimal.Zero, err
	}
	return acct.OpeningBalance.Add(flows[accountID]), nil
}

// Compute sums assets, savings and positive account balances against loans and overdrafts.
// Accounts already mirrored as assets are not counted twice.
func Compute(ctx context.Context, db *gorm.DB, userID uint) (*NetWorth, error) {
	db = db.WithContext(ctx)
	var b Breakdown
	var err error

	if b.Assets, err = sum(db.Model(&models.Asset{}).Where("user_id = ?", userID), "current_value"); err != nil {
		return nil, err
	}
	if b.SavingsGoals, err = sum(db.Model(&models.SavingsGoal{}).Where("user_id = ?", userID), "current_amount"); err != nil {
		return nil, err
	}
	if b.Loans, err = sum(db.Model(&models.Liability{}).Where("user_id = ?", userID), "principal_balance"); err != nil {
		return nil, err
	}

	var accounts []models.Account
	err = db.Where("user_id = ? AND status = ?", userID, models.AccountActive).
		Where("id NOT IN (?)", db.Model(&models.Asset{}).Select("source_id").
			Where("user_id = ? AND source_type = ? AND source_id IS NOT NULL", userID, models.AssetSourceAccount)).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	flows, err := accountFlows(db, userID, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		balance := a.OpeningBalance.Add(flows[a.ID])
		if balance.IsNegative() {
			b.AccountOverdrafts = b.AccountOverdrafts.Add(balance.Abs())
		} else {
			b.AccountBalances = b.AccountBalances.Add(balance)
		}
	}

	nw := &NetWorth{
		TotalAssets:      b.Assets.Add(b.SavingsGoals).Add(b.AccountBalances),
		TotalLiabilities: b.Loans.Add(b.AccountOverdrafts),
		Breakdown:        b,
	}
	nw.NetWorth = nw.TotalAssets.Sub(nw.TotalLiabilities)
	return nw, nil
}

// Snapshot upserts today's (or date's) net worth row for the user.
func Snapshot(ctx context.Context, db *gorm.DB, userID uint, date time.Time) (*models.NetWorthSnapshot, error) {
	nw, err := Compute(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	y, m, d := date.Date()
	snap := &models.NetWorthSnapshot{
		UserID:           userID,
		Date:             time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TotalAssets:      nw.TotalAssets,
		TotalLiabilities: nw.TotalLiabilities,
		NetWorth:         nw.NetWorth,
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_assets", "total_liabilities", "net_worth", "updated_at"}),
	}).Create(snap).Error
	return snap, err
}

// SnapshotAll records a snapshot for every user; it is run by the scheduler.
func SnapshotAll(ctx context.Context, db *gorm.DB, date time.Time) (int, error) {
	var users []uint
	if err := db.WithContext(ctx).Model(&models.User{}).Pluck("id", &users).Error; err != nil {
		return 0, err
	}
	for _, id := range users {
		if _, err := Snapshot(ctx, db, id, date); err != nil {
			return 0, err
		}
	}
	return len(users), nil
}

func sum(q *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("SUM(" + column + ")").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// accountFlows nets income, expenses, fees and both transfer legs per account.
func accountFlows(db *gorm.DB, userID uint, accountIDs []uint) (map[uint]decimal.Decimal, error) {
	out := map[uint]decimal.Decimal{}
	if len(accountIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		AccountID uint
		Net       decimal.Decimal
	}
	err := db.Model(&models.Transaction{}).
		Select(`account_id, COALESCE(SUM(CASE
			WHEN kind = 'INCOME' THEN amount
			WHEN kind = 'EXPENSE' THEN -amount - fee
			WHEN kind = 'TRANSFER' AND transfer_direction = 'IN' THEN amount
			ELSE -amount - fee END), 0) AS net`).
		Where("user_id = ? AND account_id IN ?", userID, accountIDs).
		Group("account_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.AccountID] = r.Net
	}
	return out, nil
}
