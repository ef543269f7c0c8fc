// Package budget reports planned versus actual spend per budget line and raises
// threshold warnings when spend crosses a configured share of the plan.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
)

var ErrNotFound = errors.New("budget not found")

type Line struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Planned      decimal.Decimal `json:"planned"`
	Actual       decimal.Decimal `json:"actual"`
	Difference   decimal.Decimal `json:"difference"`
	Percent      float64         `json:"percent"`
}

type Totals struct {
	Planned    decimal.Decimal `json:"planned"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
}

type Summary struct {
	BudgetID  uint      `json:"budget_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Lines     []Line    `json:"lines"`
	Totals    Totals    `json:"totals"`
}

// Summarize compares every line of a budget with the expenses booked in its period.
func Summarize(ctx context.Context, db *gorm.DB, userID, budgetID uint) (*Summary, error) {
	var b models.Budget
	res := db.WithContext(ctx).Preload("Lines.Category").
		Where("id = ? AND user_id = ?", budgetID, userID).Limit(1).Find(&b)
	if res.Error != nil {
		return nil, fmt.Errorf("load budget: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	s := &Summary{
		BudgetID:  b.ID,
		Name:      b.Name,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Lines:     make([]Line, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		actual, err := Spent(db.WithContext(ctx), userID, l.CategoryID, b.StartDate, b.EndDate)
		if err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, Line{
			CategoryID:   l.CategoryID,
			CategoryName: l.Category.Name,
			Planned:      l.PlannedAmount,
			Actual:       actual,
			Difference:   l.PlannedAmount.Sub(actual),
			Percent:      percent(actual, l.PlannedAmount),
		})
		s.Totals.Planned = s.Totals.Planned.Add(l.PlannedAmount)
		s.Totals.Actual = s.Totals.Actual.Add(actual)
	}
	s.Totals.Difference = s.Totals.Planned.Sub(s.Totals.Actual)
	return s, nil
}

// Spent sums the user's expenses in a category over an inclusive date range.
func Spent(db *gorm.DB, userID, categoryID uint, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.Model(&models.Transaction{}).
		Select("SUM(amount)").
		Where("user_id = ? AND category_id = ? AND kind = ? AND date >= ? AND date <= ?",
			userID, categoryID, models.KindExpense, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum spend: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func percent(actual, planned decimal.Decimal) float64 {
	if !planned.IsPositive() {
		return 0
	}
	return actual.Mul(decimal.NewFromInt(100)).Div(planned).Round(1).InexactFloat64()
}
