// Package report builds a month-bounded income and expense report for one user.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
)

var ErrUserNotFound = errors.New("user not found")

type CategoryTotal struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// Report covers [Start, End). Transfers are counted separately since they move money between
// the user's own accounts; their fees are expenses.
type Report struct {
	Username   string               `json:"username"`
	Month      string               `json:"month"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	Count      int64                `json:"count"`
	Income     decimal.Decimal      `json:"income"`
	Expense    decimal.Decimal      `json:"expense"`
	Fees       decimal.Decimal      `json:"fees"`
	Transfers  decimal.Decimal      `json:"transfers"`
	Net        decimal.Decimal      `json:"net"`
	Categories []CategoryTotal      `json:"categories"`
	Rows       []models.Transaction `json:"rows,omitempty"`
}

// MonthBounds parses YYYY-MM into the first day of that month and of the next.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

type totalsRow struct {
	Count     int64
	Income    decimal.NullDecimal
	Expense   decimal.NullDecimal
	Fees      decimal.NullDecimal
	Transfers decimal.NullDecimal
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// Build aggregates the user's transactions for month. With list set the rows are included.
func Build(ctx context.Context, db *gorm.DB, username, month string, list bool) (*Report, error) {
	start, end, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var tr totalsRow
	err = db.Model(&models.Transaction{}).
		Select(`COUNT(*) AS count,
			SUM(CASE WHEN kind = ? THEN amount END) AS income,
			SUM(CASE WHEN kind = ? THEN amount END) AS expense,
			SUM(fee) AS fees,
			SUM(CASE WHEN kind = ? AND transfer_direction = ? THEN amount END) AS transfers`,
			models.KindIncome, models.KindExpense, models.KindTransfer, models.DirectionOut).
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).
		Scan(&tr).Error
	if err != nil {
		return nil, err
	}

	r := &Report{
		Username:  user.Username,
		Month:     month,
		Start:     start,
		End:       end,
		Count:     tr.Count,
		Income:    orZero(tr.Income),
		Expense:   orZero(tr.Expense),
		Fees:      orZero(tr.Fees),
		Transfers: orZero(tr.Transfers),
	}
	r.Net = r.Income.Sub(r.Expense).Sub(r.Fees)

	err = db.Table("transactions t").
		Select("COALESCE(c.name, 'Uncategorised') AS name, t.kind AS kind, SUM(t.amount) AS total, COUNT(*) AS count").
		Joins("LEFT JOIN categories c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.date >= ? AND t.date < ? AND t.kind <> ?", user.ID, start, end, models.KindTransfer).
		Group("COALESCE(c.name, 'Uncategorised'), t.kind").
		Order("kind, total DESC, name").
		Scan(&r.Categories).Error
	if err != nil {
		return nil, err
	}

	if list {
		err = db.Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).
			Order("date, id").Find(&r.Rows).Error
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WriteText prints the report in the plain pipe-separated layout used by the CLI.
func (r *Report) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", r.Username, r.Month)
	fmt.Fprintf(w, "  records=%d income=%s expense=%s fees=%s net=%s transfers=%s\n",
		r.Count, r.Income.StringFixed(2), r.Expense.StringFixed(2), r.Fees.StringFixed(2),
		r.Net.StringFixed(2), r.Transfers.StringFixed(2))
	for _, c := range r.Categories {
		fmt.Fprintf(w, "  %-8s %-24s %12s (%d)\n", c.Kind, c.Name, c.Total.StringFixed(2), c.Count)
	}
	for _, t := range r.Rows {
		fmt.Fprintf(w, "%d|%s|%s|%s|%s\n", t.ID, t.Date.Format("2006-01-02"), t.Kind, t.Amount.StringFixed(2), t.Description)
	}
}
