package ledger

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/wealth"
)

var actionSign = map[string]int64{
	models.ActionBuy:      1,
	models.ActionSell:     -1,
	models.ActionFee:      -1,
	models.ActionDividend: 0,
	models.ActionInterest: 0,
}

// InvestmentSynchronizer moves an investment's position by the signed amount of each linked transaction
// and keeps the mirrored net-worth asset in step.
type InvestmentSynchronizer struct {
	logger *common.Logger
}

func NewInvestmentSynchronizer(logger *common.Logger) *InvestmentSynchronizer {
	return &InvestmentSynchronizer{logger: logger}
}

func (s *InvestmentSynchronizer) Name() string { return "investment" }

func (s *InvestmentSynchronizer) Sync(tx *gorm.DB, userID uint, before, after *models.Transaction) error {
	deltas := map[uint]decimal.Decimal{}
	if investmentLinked(before) {
		deltas[*before.InvestmentID] = deltas[*before.InvestmentID].Sub(signedAmount(before))
	}
	if investmentLinked(after) {
		deltas[*after.InvestmentID] = deltas[*after.InvestmentID].Add(signedAmount(after))
	}

	for _, id := range sortedKeys(deltas) {
		delta := deltas[id]
		if delta.IsZero() {
			continue
		}
		var inv models.Investment
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&inv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		ApplyInvestmentDelta(&inv, delta)
		err := tx.Model(&inv).Updates(map[string]any{
			"current_price": inv.CurrentPrice,
			"quantity":      inv.Quantity,
			"status":        inv.Status,
		}).Error
		if err != nil {
			return err
		}
		if err := wealth.SyncInvestmentAsset(tx, &inv); err != nil {
			return err
		}
	}

	if investmentLinked(after) && after.InvestmentAction == nil {
		var inv models.Investment
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", *after.InvestmentID, userID).Limit(1).Find(&inv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.persistInferredAction(tx, after)
		}
	}
	return nil
}

// ApplyInvestmentDelta moves the position by a cash delta. A single-unit holding absorbs it
// into the price; otherwise units are bought or sold at the current price.
func ApplyInvestmentDelta(inv *models.Investment, delta decimal.Decimal) {
	one := decimal.NewFromInt(1)
	if inv.Quantity.Equal(one) {
		inv.CurrentPrice = decimal.Max(decimal.Zero, inv.CurrentPrice.Add(delta)).Round(2)
		return
	}
	if !inv.CurrentPrice.IsPositive() {
		return
	}
	qty := inv.Quantity.Add(delta.Div(inv.CurrentPrice)).Round(4)
	inv.Quantity = decimal.Max(decimal.Zero, qty)
	switch {
	case inv.Quantity.IsZero():
		inv.Status = models.InvestmentSold
	case inv.Status == models.InvestmentSold:
		inv.Status = models.InvestmentActive
	}
}

// InferAction guesses the action of a transaction that names none.
func InferAction(kind string) string {
	if kind == models.KindIncome {
		return models.ActionSell
	}
	return models.ActionBuy
}

// persistInferredAction stores the inferred action on the row once the investment is known to be the
// user's. Failure is logged and the write continues.
func (s *InvestmentSynchronizer) persistInferredAction(tx *gorm.DB, t *models.Transaction) {
	action := InferAction(t.Kind)
	t.InvestmentAction = &action

	const sp = "investment_action"
	if err := tx.SavePoint(sp).Error; err != nil {
		s.logger.Warn().Err(err).Uint("id", t.ID).Msg("Could not open savepoint for inferred action")
		return
	}
	if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Update("investment_action", action).Error; err != nil {
		if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
			s.logger.Error().Err(rbErr).Uint("id", t.ID).Msg("Rollback to savepoint failed")
		}
		s.logger.Warn().Err(err).Uint("id", t.ID).Str("action", action).Msg("Inferred action not persisted")
	}
}

func signedAmount(t *models.Transaction) decimal.Decimal {
	action := InferAction(t.Kind)
	if t.InvestmentAction != nil {
		action = *t.InvestmentAction
	}
	return t.Amount.Mul(decimal.NewFromInt(actionSign[action]))
}

func investmentLinked(t *models.Transaction) bool {
	return t != nil && t.Kind != models.KindTransfer && t.InvestmentID != nil
}
