package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
)

// Notifier raises a warning the moment a committed expense pushes a budget line
// from below the threshold to at or above it.
type Notifier struct {
	db        *gorm.DB
	notify    *notify.Service
	threshold decimal.Decimal
	logger    *common.Logger
}

func NewNotifier(db *gorm.DB, svc *notify.Service, threshold float64, logger *common.Logger) *Notifier {
	return &Notifier{
		db:        db,
		notify:    svc,
		threshold: decimal.NewFromFloat(threshold),
		logger:    logger.WithComponent("budget"),
	}
}

// hit is a budget line whose period covers a transaction date.
type hit struct {
	BudgetID      uint
	BudgetName    string
	StartDate     time.Time
	EndDate       time.Time
	CategoryName  string
	PlannedAmount decimal.Decimal
}

// TransactionCommitted reports whether a warning was raised. Errors are logged only.
func (n *Notifier) TransactionCommitted(ctx context.Context, userID uint, before, after *models.Transaction) bool {
	if !counts(after) {
		return false
	}
	hits, err := n.linesCovering(ctx, userID, *after.CategoryID, after.Date)
	if err != nil {
		n.logger.Warn().Err(err).Uint("user_id", userID).Msg("Budget lookup failed")
		return false
	}

	raised := false
	for _, h := range hits {
		if !h.PlannedAmount.IsPositive() {
			continue
		}
		now, err := Spent(n.db.WithContext(ctx), userID, *after.CategoryID, h.StartDate, h.EndDate)
		if err != nil {
			n.logger.Warn().Err(err).Uint("budget_id", h.BudgetID).Msg("Budget spend lookup failed")
			continue
		}
		prev := now.Sub(after.Amount)
		if counts(before) && *before.CategoryID == *after.CategoryID && within(before.Date, h.StartDate, h.EndDate) {
			prev = prev.Add(before.Amount)
		}
		if !Crossed(prev, now, h.PlannedAmount, n.threshold) {
			continue
		}
		if n.warn(ctx, userID, h, now) {
			raised = true
		}
	}
	return raised
}

// Crossed is the edge condition prev/planned < threshold <= now/planned.
func Crossed(prev, now, planned, threshold decimal.Decimal) bool {
	if !planned.IsPositive() {
		return false
	}
	limit := planned.Mul(threshold)
	return prev.LessThan(limit) && now.GreaterThanOrEqual(limit)
}

func (n *Notifier) warn(ctx context.Context, userID uint, h hit, spent decimal.Decimal) bool {
	title := Title(h.BudgetName, h.CategoryName, n.threshold)
	exists, err := n.notify.Exists(ctx, userID, title, h.StartDate)
	if err != nil {
		n.logger.Warn().Err(err).Uint("budget_id", h.BudgetID).Msg("Notification lookup failed")
		return false
	}
	if exists {
		return false
	}
	ok := n.notify.Dispatch(ctx, notify.Message{
		UserID:   userID,
		Title:    title,
		Body:     fmt.Sprintf("Planned: %s. Spent: %s. Period: %s to %s.", h.PlannedAmount.StringFixed(2), spent.StringFixed(2), h.StartDate.Format("2006-01-02"), h.EndDate.Format("2006-01-02")),
		Level:    models.LevelWarning,
		Category: models.NotificationCategoryBudget,
		LinkURL:  "/budgets",
	})
	if ok {
		n.logger.Info().Uint("user_id", userID).Uint("budget_id", h.BudgetID).Str("category", h.CategoryName).Msg("Budget threshold reached")
	}
	return ok
}

// Title is the per-line warning title; it doubles as the dedup key within a period.
func Title(budgetName, categoryName string, threshold decimal.Decimal) string {
	pct := threshold.Mul(decimal.NewFromInt(100)).IntPart()
	return fmt.Sprintf("Budget '%s': %s reached %d%%", budgetName, categoryName, pct)
}

func (n *Notifier) linesCovering(ctx context.Context, userID, categoryID uint, date time.Time) ([]hit, error) {
	var hits []hit
	err := n.db.WithContext(ctx).Table("budget_lines bl").
		Select("b.id AS budget_id, b.name AS budget_name, b.start_date, b.end_date, c.name AS category_name, bl.planned_amount").
		Joins("JOIN budgets b ON b.id = bl.budget_id").
		Joins("JOIN categories c ON c.id = bl.category_id").
		Where("b.user_id = ? AND bl.category_id = ? AND b.start_date <= ? AND b.end_date >= ?", userID, categoryID, date, date).
		Order("b.id").
		Scan(&hits).Error
	return hits, err
}

func counts(t *models.Transaction) bool {
	return t != nil && t.Kind == models.KindExpense && t.CategoryID != nil
}

func within(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
