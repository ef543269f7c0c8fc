package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
)

// LiabilitySynchronizer reduces a liability's principal by the amount of each linked expense.
type LiabilitySynchronizer struct{}

func NewLiabilitySynchronizer() *LiabilitySynchronizer { return &LiabilitySynchronizer{} }

func (s *LiabilitySynchronizer) Name() string { return "liability" }

func (s *LiabilitySynchronizer) Sync(tx *gorm.DB, userID uint, before, after *models.Transaction) error {
	deltas := map[uint]decimal.Decimal{}
	if id, ok := liabilityLink(before); ok {
		deltas[id] = deltas[id].Add(before.Amount)
	}
	if id, ok := liabilityLink(after); ok {
		deltas[id] = deltas[id].Sub(after.Amount)
	}

	for _, id := range sortedKeys(deltas) {
		delta := deltas[id]
		if delta.IsZero() {
			continue
		}
		var l models.Liability
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&l)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		balance := decimal.Max(decimal.Zero, l.PrincipalBalance.Add(delta))
		if err := tx.Model(&l).Update("principal_balance", balance).Error; err != nil {
			return err
		}
	}
	return nil
}

func liabilityLink(t *models.Transaction) (uint, bool) {
	if t == nil || t.Kind != models.KindExpense || t.LiabilityID == nil {
		return 0, false
	}
	return *t.LiabilityID, true
}

// sortedKeys fixes the lock order across concurrent writers.
func sortedKeys(m map[uint]decimal.Decimal) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
