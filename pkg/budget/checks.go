package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
)

// CheckAll warns about every line of every active budget that is at or over the threshold
// and has not been warned about this period. It returns the number of warnings raised.
func (n *Notifier) CheckAll(ctx context.Context, today time.Time) (int, error) {
	var budgets []models.Budget
	err := n.db.WithContext(ctx).Preload("Lines.Category").
		Where("start_date <= ? AND end_date >= ?", today, today).
		Order("id").Find(&budgets).Error
	if err != nil {
		return 0, fmt.Errorf("load active budgets: %w", err)
	}

	raised := 0
	for _, b := range budgets {
		for _, l := range b.Lines {
			if !l.PlannedAmount.IsPositive() {
				continue
			}
			spent, err := Spent(n.db.WithContext(ctx), b.UserID, l.CategoryID, b.StartDate, b.EndDate)
			if err != nil {
				n.logger.Warn().Err(err).Uint("budget_id", b.ID).Msg("Budget spend lookup failed")
				continue
			}
			if spent.LessThan(l.PlannedAmount.Mul(n.threshold)) {
				continue
			}
			h := hit{
				BudgetID:      b.ID,
				BudgetName:    b.Name,
				StartDate:     b.StartDate,
				EndDate:       b.EndDate,
				CategoryName:  l.Category.Name,
				PlannedAmount: l.PlannedAmount,
			}
			if n.warn(ctx, b.UserID, h, spent) {
				raised++
			}
		}
	}
	n.logger.Info().Int("budgets", len(budgets)).Int("raised", raised).Msg("Budget checks complete")
	return raised, nil
}

// EndingTitle names the reminder sent shortly before a budget period closes.
func EndingTitle(budgetName string) string {
	return fmt.Sprintf("Budget ending soon: %s", budgetName)
}

// RemindEnding tells users about budgets whose period ends within days of today, once per budget.
func (n *Notifier) RemindEnding(ctx context.Context, today time.Time, days int) (int, error) {
	var budgets []models.Budget
	err := n.db.WithContext(ctx).
		Where("end_date >= ? AND end_date <= ?", today, today.AddDate(0, 0, days)).
		Order("id").Find(&budgets).Error
	if err != nil {
		return 0, fmt.Errorf("load ending budgets: %w", err)
	}
	sent := 0
	for _, b := range budgets {
		title := EndingTitle(b.Name)
		exists, err := n.notify.Exists(ctx, b.UserID, title, b.StartDate)
		if err != nil {
			n.logger.Warn().Err(err).Uint("budget_id", b.ID).Msg("Notification lookup failed")
			continue
		}
		if exists {
			continue
		}
		ok := n.notify.Dispatch(ctx, notify.Message{
			UserID:   b.UserID,
			Title:    title,
			Body:     fmt.Sprintf("Your budget '%s' ends on %s. Check its summary in the app.", b.Name, b.EndDate.Format("2006-01-02")),
			Level:    models.LevelInfo,
			Category: models.NotificationCategoryBudget,
			LinkURL:  fmt.Sprintf("/budgets/%d/summary", b.ID),
		})
		if ok {
			sent++
		}
	}
	return sent, nil
}
