package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
)

// TransferManager creates, re-pairs and dissolves the two legs of a transfer.
// The OUT leg sits on the source account and carries the fee; the IN leg's fee is always zero.
type TransferManager struct{}

// Create inserts one row, or two paired rows for a transfer, and returns the primary (OUT) row.
func (m *TransferManager) Create(tx *gorm.DB, userID uint, in *Input) (*models.Transaction, error) {
	if in.Kind != models.KindTransfer {
		t := &models.Transaction{UserID: userID}
		in.apply(t)
		if err := tx.Create(t).Error; err != nil {
			return nil, err
		}
		return t, nil
	}

	group := uuid.New()
	out := &models.Transaction{UserID: userID}
	inLeg := &models.Transaction{UserID: userID}
	m.shape(in, out, inLeg, in.AccountID, *in.TransferAccountID, group, in.Fee)
	if err := tx.Create(out).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(inLeg).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies in to cur, creating, re-pairing or dissolving the counterpart as the kind requires.
// cur may be either leg; the returned row is cur after the edit.
func (m *TransferManager) Update(tx *gorm.DB, userID uint, cur *models.Transaction, in *Input) (*models.Transaction, error) {
	wasTransfer := cur.Kind == models.KindTransfer

	if in.Kind != models.KindTransfer {
		if wasTransfer {
			if err := m.dropCounterparts(tx, userID, cur); err != nil {
				return nil, err
			}
		}
		in.apply(cur)
		clearTransfer(cur)
		return cur, tx.Save(cur).Error
	}

	var counterpart *models.Transaction
	if wasTransfer && cur.TransferGroup != nil {
		found, err := m.lockCounterpart(tx, userID, cur)
		if err != nil {
			return nil, err
		}
		counterpart = found
	}

	if in.TransferAccountID == nil && !wasTransfer {
		return nil, invalid("transfer_account", "is required for transfers")
	}
	if in.TransferAccountID == nil {
		// destination removed: the pair dissolves into one row. An IN leg stays as the money
		// that arrived, anything else as money that left.
		if err := m.dropCounterparts(tx, userID, cur); err != nil {
			return nil, err
		}
		wasIn := cur.TransferDirection != nil && *cur.TransferDirection == models.DirectionIn
		in.apply(cur)
		clearLinks(cur)
		clearTransfer(cur)
		cur.Kind = models.KindExpense
		if wasIn {
			cur.Kind = models.KindIncome
			cur.Fee = decimal.Zero
		}
		return cur, tx.Save(cur).Error
	}

	editingIn := wasTransfer && cur.TransferDirection != nil && *cur.TransferDirection == models.DirectionIn
	src, dst := in.AccountID, *in.TransferAccountID
	fee := in.Fee
	if editingIn {
		src, dst = dst, src
		if counterpart != nil {
			fee = counterpart.Fee
		}
	}

	group := uuid.New()
	if cur.TransferGroup != nil {
		group = *cur.TransferGroup
	}

	out, inLeg := cur, counterpart
	if editingIn {
		out, inLeg = counterpart, cur
	}
	if out == nil {
		out = &models.Transaction{UserID: userID}
	}
	if inLeg == nil {
		inLeg = &models.Transaction{UserID: userID}
	}
	m.shape(in, out, inLeg, src, dst, group, fee)

	for _, row := range []*models.Transaction{out, inLeg} {
		var err error
		if row.ID == 0 {
			err = tx.Create(row).Error
		} else {
			err = tx.Save(row).Error
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// DeletePair removes every row of a transfer group.
func (m *TransferManager) DeletePair(tx *gorm.DB, userID uint, group uuid.UUID) error {
	return tx.Where("user_id = ? AND transfer_group = ?", userID, group).Delete(&models.Transaction{}).Error
}

// shape writes the shared fields and the leg-specific fields onto both rows.
func (m *TransferManager) shape(in *Input, out, inLeg *models.Transaction, src, dst uint, group uuid.UUID, fee decimal.Decimal) {
	for _, row := range []*models.Transaction{out, inLeg} {
		in.applyShared(row)
		clearLinks(row)
		g := group
		row.TransferGroup = &g
	}
	outDir, inDir := models.DirectionOut, models.DirectionIn
	srcID, dstID := src, dst

	out.AccountID = src
	out.TransferAccountID = &dstID
	out.TransferDirection = &outDir
	out.Fee = fee

	inLeg.AccountID = dst
	inLeg.TransferAccountID = &srcID
	inLeg.TransferDirection = &inDir
	inLeg.Fee = decimal.Zero
}

// lockCounterpart returns the other leg, or nil when it is missing. Surplus rows in the
// group are deleted so exactly one counterpart remains.
func (m *TransferManager) lockCounterpart(tx *gorm.DB, userID uint, cur *models.Transaction) (*models.Transaction, error) {
	var rows []models.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND transfer_group = ? AND id <> ?", userID, *cur.TransferGroup, cur.ID).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		extra := make([]uint, 0, len(rows)-1)
		for _, r := range rows[1:] {
			extra = append(extra, r.ID)
		}
		if err := tx.Delete(&models.Transaction{}, extra).Error; err != nil {
			return nil, err
		}
	}
	return &rows[0], nil
}

func (m *TransferManager) dropCounterparts(tx *gorm.DB, userID uint, cur *models.Transaction) error {
	if cur.TransferGroup == nil {
		return nil
	}
	return tx.Where("user_id = ? AND transfer_group = ? AND id <> ?", userID, *cur.TransferGroup, cur.ID).
		Delete(&models.Transaction{}).Error
}

func clearTransfer(t *models.Transaction) {
	t.TransferGroup = nil
	t.TransferAccountID = nil
	t.TransferDirection = nil
}

func clearLinks(t *models.Transaction) {
	t.LiabilityID = nil
	t.SavingsGoalID = nil
	t.InvestmentID = nil
	t.InvestmentAction = nil
}
