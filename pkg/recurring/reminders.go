package recurring

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
)

type Reminders struct {
	db     *gorm.DB
	notify *notify.Service
	logger *common.Logger
}

func NewReminders(db *gorm.DB, svc *notify.Service, logger *common.Logger) *Reminders {
	return &Reminders{db: db, notify: svc, logger: logger.WithComponent("recurring")}
}

func ReminderTitle(due time.Time) string {
	return "Upcoming subscription on " + due.Format("2006-01-02")
}

// Check raises one reminder per template whose next occurrence falls within
// [today, today+days], at most once per title per day. It returns the number raised.
func (r *Reminders) Check(ctx context.Context, today time.Time, days int) (int, error) {
	horizon := today.AddDate(0, 0, days)

	var templates []models.RecurringTransaction
	if err := r.db.WithContext(ctx).Order("id").Find(&templates).Error; err != nil {
		return 0, fmt.Errorf("load recurring transactions: %w", err)
	}

	raised := 0
	for _, t := range templates {
		due := Next(t)
		if due.Before(today) || due.After(horizon) {
			continue
		}
		if t.EndDate != nil && due.After(*t.EndDate) {
			continue
		}
		title := ReminderTitle(due)
		exists, err := r.notify.Exists(ctx, t.UserID, title, today)
		if err != nil {
			r.logger.Warn().Err(err).Uint("recurring_id", t.ID).Msg("Notification lookup failed")
			continue
		}
		if exists {
			continue
		}
		desc := t.Description
		if desc == "" {
			desc = "Recurring transaction"
		}
		if r.notify.Dispatch(ctx, notify.Message{
			UserID:   t.UserID,
			Title:    title,
			Body:     fmt.Sprintf("%s scheduled on %s for %s.", desc, due.Format("2006-01-02"), t.Amount.StringFixed(2)),
			Level:    models.LevelInfo,
			Category: models.NotificationCategoryRecurring,
			LinkURL:  "/subscriptions",
		}) {
			raised++
		}
	}
	return raised, nil
}
