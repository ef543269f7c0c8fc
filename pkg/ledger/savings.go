package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
)

// SavingsSynchronizer mirrors goal-linked transactions as contributions. The contribution row,
// keyed by transaction, is the record of what has been applied to the goal, so re-running a sync
// for the same state changes nothing.
type SavingsSynchronizer struct{}

func NewSavingsSynchronizer() *SavingsSynchronizer { return &SavingsSynchronizer{} }

func (s *SavingsSynchronizer) Name() string { return "savings" }

func (s *SavingsSynchronizer) Sync(tx *gorm.DB, userID uint, before, after *models.Transaction) error {
	if !goalLinked(before) && !goalLinked(after) {
		return nil
	}
	txnID := rowID(before, after)

	var existing *models.GoalContribution
	var c models.GoalContribution
	res := tx.Where("transaction_id = ?", txnID).Limit(1).Find(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		existing = &c
	}

	if goalLinked(after) && existing != nil && existing.GoalID == *after.SavingsGoalID {
		delta := after.Amount.Sub(existing.Amount)
		err := tx.Model(existing).Updates(map[string]any{
			"amount": after.Amount,
			"date":   after.Date,
			"notes":  after.Description,
		}).Error
		if err != nil {
			return err
		}
		_, err = adjustGoal(tx, userID, existing.GoalID, delta)
		return err
	}

	if existing != nil {
		if err := tx.Delete(existing).Error; err != nil {
			return err
		}
		if _, err := adjustGoal(tx, userID, existing.GoalID, existing.Amount.Neg()); err != nil {
			return err
		}
	}

	if !goalLinked(after) {
		return nil
	}
	applied, err := adjustGoal(tx, userID, *after.SavingsGoalID, after.Amount)
	if err != nil || !applied {
		return err
	}
	id := after.ID
	return tx.Create(&models.GoalContribution{
		GoalID:           *after.SavingsGoalID,
		Amount:           after.Amount,
		ContributionType: models.ContributionAutomatic,
		Date:             after.Date,
		Notes:            after.Description,
		TransactionID:    &id,
	}).Error
}

// AddManualContribution records money put toward a goal outside the ledger.
func AddManualContribution(tx *gorm.DB, userID, goalID uint, amount decimal.Decimal, date time.Time, notes string) (*models.GoalContribution, error) {
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be positive")
	}
	applied, err := adjustGoal(tx, userID, goalID, amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrNotFound
	}
	c := &models.GoalContribution{
		GoalID:           goalID,
		Amount:           amount,
		ContributionType: models.ContributionManual,
		Date:             truncateDay(date),
		Notes:            notes,
	}
	return c, tx.Create(c).Error
}

// adjustGoal adds delta to current_amount, floored at zero. It reports false when
// the goal does not belong to the user.
func adjustGoal(tx *gorm.DB, userID, goalID uint, delta decimal.Decimal) (bool, error) {
	var g models.SavingsGoal
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", goalID, userID).Limit(1).Find(&g)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if delta.IsZero() {
		return true, nil
	}
	current := decimal.Max(decimal.Zero, g.CurrentAmount.Add(delta))
	return true, tx.Model(&g).Update("current_amount", current).Error
}

func goalLinked(t *models.Transaction) bool {
	return t != nil && t.Kind != models.KindTransfer && t.SavingsGoalID != nil
}

func rowID(before, after *models.Transaction) uint {
	if after != nil {
		return after.ID
	}
	return before.ID
}
