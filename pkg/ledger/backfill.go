package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

// BackfillOptions selects the users and steps of a backfill run.
type BackfillOptions struct {
	UserID         uint // zero means every user
	RecomputeGoals bool
	DryRun         bool
}

// BackfillCounts reports what a run changed, or would change in dry-run mode.
type BackfillCounts struct {
	ContributionsCreated int `json:"savings_contributions_created"`
	ActionsSet           int `json:"investment_actions_set"`
	PairsCreated         int `json:"transfer_pairs_created"`
	PairsUpdated         int `json:"transfer_pairs_updated"`
	GoalsRecomputed      int `json:"savings_recalculated"`
}

func (c *BackfillCounts) add(o BackfillCounts) {
	c.ContributionsCreated += o.ContributionsCreated
	c.ActionsSet += o.ActionsSet
	c.PairsCreated += o.PairsCreated
	c.PairsUpdated += o.PairsUpdated
	c.GoalsRecomputed += o.GoalsRecomputed
}

var errRollback = errors.New("backfill dry run")

// Backfill repairs rows written before the synchronizers existed: goal-linked rows without a
// contribution, investment rows without an action and transfer rows without a pair.
// Each user is handled in its own transaction; a dry run rolls every one of them back.
func Backfill(ctx context.Context, db *gorm.DB, logger *common.Logger, opts BackfillOptions) (BackfillCounts, error) {
	log := logger.WithComponent("backfill")
	var userIDs []uint
	q := db.WithContext(ctx).Model(&models.User{}).Order("id")
	if opts.UserID != 0 {
		q = q.Where("id = ?", opts.UserID)
	}
	if err := q.Pluck("id", &userIDs).Error; err != nil {
		return BackfillCounts{}, err
	}

	var total BackfillCounts
	for _, uid := range userIDs {
		var got BackfillCounts
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			if got, err = backfillUser(tx, uid, opts.RecomputeGoals); err != nil {
				return err
			}
			if opts.DryRun {
				return errRollback
			}
			return nil
		})
		if err != nil && !errors.Is(err, errRollback) {
			return total, err
		}
		log.Debug().Uint("user_id", uid).Interface("counts", got).Bool("dry_run", opts.DryRun).Msg("User backfilled")
		total.add(got)
	}
	log.Info().Int("users", len(userIDs)).Interface("counts", total).Bool("dry_run", opts.DryRun).Msg("Backfill complete")
	return total, nil
}

func backfillUser(tx *gorm.DB, userID uint, recompute bool) (BackfillCounts, error) {
	var c BackfillCounts
	var err error
	if c.ContributionsCreated, err = backfillContributions(tx, userID); err != nil {
		return c, err
	}
	if c.ActionsSet, err = backfillActions(tx, userID); err != nil {
		return c, err
	}
	if c.PairsCreated, c.PairsUpdated, err = backfillTransfers(tx, userID); err != nil {
		return c, err
	}
	if recompute {
		if c.GoalsRecomputed, err = recomputeGoals(tx, userID); err != nil {
			return c, err
		}
	}
	return c, nil
}

// backfillContributions adds the missing contribution rows. Goal balances are left alone;
// recomputeGoals brings them in line with the contributions.
func backfillContributions(tx *gorm.DB, userID uint) (int, error) {
	var rows []models.Transaction
	err := tx.Where("user_id = ? AND savings_goal_id IS NOT NULL AND kind <> ?", userID, models.KindTransfer).
		Where("NOT EXISTS (SELECT 1 FROM goal_contributions gc WHERE gc.transaction_id = transactions.id)").
		Where("savings_goal_id IN (?)", tx.Model(&models.SavingsGoal{}).Select("id").Where("user_id = ?", userID)).
		Order("id").Find(&rows).Error
	if err != nil {
		return 0, err
	}
	for _, t := range rows {
		id := t.ID
		err := tx.Create(&models.GoalContribution{
			GoalID:           *t.SavingsGoalID,
			Amount:           t.Amount,
			ContributionType: models.ContributionAutomatic,
			Date:             t.Date,
			Notes:            t.Description,
			TransactionID:    &id,
		}).Error
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func backfillActions(tx *gorm.DB, userID uint) (int, error) {
	n := 0
	for _, kind := range []string{models.KindExpense, models.KindIncome} {
		res := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND investment_id IS NOT NULL AND investment_action IS NULL AND kind = ?", userID, kind).
			Update("investment_action", InferAction(kind))
		if res.Error != nil {
			return 0, res.Error
		}
		n += int(res.RowsAffected)
	}
	return n, nil
}

// backfillTransfers gives every unpaired transfer a group. A matching row on the other account
// (same amount and date, pointing back) becomes the IN leg; otherwise one is created.
func backfillTransfers(tx *gorm.DB, userID uint) (created, updated int, err error) {
	var rows []models.Transaction
	err = tx.Where("user_id = ? AND kind = ? AND transfer_account_id IS NOT NULL", userID, models.KindTransfer).
		Where("transfer_group IS NULL OR transfer_direction IS NULL").
		Order("id").Find(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	done := make(map[uint]bool, len(rows))
	for i := range rows {
		t := &rows[i]
		if done[t.ID] {
			continue
		}
		done[t.ID] = true

		group := uuid.New()
		if t.TransferGroup != nil {
			group = *t.TransferGroup
		}
		dir := models.DirectionOut
		if t.TransferDirection != nil {
			dir = *t.TransferDirection
		}
		if err := tx.Model(t).Updates(map[string]any{"transfer_group": group, "transfer_direction": dir}).Error; err != nil {
			return 0, 0, err
		}

		counter := models.DirectionIn
		if dir == models.DirectionIn {
			counter = models.DirectionOut
		}
		var match models.Transaction
		res := tx.Where("user_id = ? AND kind = ? AND id <> ?", userID, models.KindTransfer, t.ID).
			Where("account_id = ? AND transfer_account_id = ? AND amount = ? AND date = ?", *t.TransferAccountID, t.AccountID, t.Amount, t.Date).
			Where("transfer_group IS NULL OR transfer_direction IS NULL").
			Order("id").Limit(1).Find(&match)
		if res.Error != nil {
			return 0, 0, res.Error
		}
		if res.RowsAffected > 0 {
			done[match.ID] = true
			if err := tx.Model(&match).Updates(map[string]any{"transfer_group": group, "transfer_direction": counter}).Error; err != nil {
				return 0, 0, err
			}
			updated++
			continue
		}

		from := t.AccountID
		leg := models.Transaction{
			UserID:            userID,
			AccountID:         *t.TransferAccountID,
			TransferAccountID: &from,
			TransferGroup:     &group,
			TransferDirection: &counter,
			Date:              t.Date,
			Amount:            t.Amount,
			Fee:               decimal.Zero,
			Kind:              models.KindTransfer,
			CategoryID:        t.CategoryID,
			Description:       t.Description,
			Tags:              t.Tags,
			IsRecurring:       t.IsRecurring,
			RecurringRule:     t.RecurringRule,
			Source:            t.Source,
			SMSReference:      t.SMSReference,
			SMSDetectedAt:     t.SMSDetectedAt,
		}
		if err := tx.Create(&leg).Error; err != nil {
			return 0, 0, err
		}
		created++
	}
	return created, updated, nil
}

// recomputeGoals sets every goal's current amount to the sum of its contributions.
func recomputeGoals(tx *gorm.DB, userID uint) (int, error) {
	var goals []models.SavingsGoal
	if err := tx.Where("user_id = ?", userID).Order("id").Find(&goals).Error; err != nil {
		return 0, err
	}
	for _, g := range goals {
		var sum decimal.NullDecimal
		if err := tx.Model(&models.GoalContribution{}).Where("goal_id = ?", g.ID).
			Select("SUM(amount)").Scan(&sum).Error; err != nil {
			return 0, err
		}
		total := decimal.Zero
		if sum.Valid {
			total = sum.Decimal
		}
		if err := tx.Model(&g).Update("current_amount", total).Error; err != nil {
			return 0, err
		}
	}
	return len(goals), nil
}
