package recurring

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
)

// Writer is the ledger write path used for materialised rows.
type Writer interface {
	Create(ctx context.Context, userID uint, in ledger.Input) (*models.Transaction, error)
}

type Materializer struct {
	db     *gorm.DB
	ledger Writer
	logger *common.Logger
}

func NewMaterializer(db *gorm.DB, w Writer, logger *common.Logger) *Materializer {
	return &Materializer{db: db, ledger: w, logger: logger.WithComponent("recurring")}
}

// Run creates every pending occurrence up to today+horizonDays and returns how many rows
// were written. A template that fails is logged and skipped; LastExecuted only moves past
// occurrences that were written.
func (m *Materializer) Run(ctx context.Context, today time.Time, horizonDays int) (int, error) {
	horizon := today.AddDate(0, 0, horizonDays)

	var templates []models.RecurringTransaction
	if err := m.db.WithContext(ctx).Order("id").Find(&templates).Error; err != nil {
		return 0, fmt.Errorf("load recurring transactions: %w", err)
	}

	created := 0
	for i := range templates {
		n, err := m.materialize(ctx, &templates[i], horizon)
		created += n
		if err != nil {
			m.logger.Warn().Err(err).Uint("recurring_id", templates[i].ID).Msg("Recurring materialisation stopped")
		}
	}
	m.logger.Info().Int("templates", len(templates)).Int("created", created).Msg("Recurring materialisation complete")
	return created, nil
}

func (m *Materializer) materialize(ctx context.Context, r *models.RecurringTransaction, horizon time.Time) (int, error) {
	desc := r.Description
	if desc == "" {
		desc = "Recurring transaction"
	}
	created := 0
	for _, day := range Occurrences(*r, horizon) {
		_, err := m.ledger.Create(ctx, r.UserID, ledger.Input{
			AccountID:   r.AccountID,
			Date:        day,
			Amount:      r.Amount,
			Kind:        r.Kind,
			CategoryID:  r.CategoryID,
			Description: desc,
			IsRecurring: true,
			Source:      models.SourceRecurring,
		})
		if err != nil {
			return created, fmt.Errorf("occurrence %s: %w", day.Format("2006-01-02"), err)
		}
		created++
		d := day
		if err := m.db.WithContext(ctx).Model(r).Update("last_executed", d).Error; err != nil {
			return created, fmt.Errorf("record last_executed: %w", err)
		}
		r.LastExecuted = &d
	}
	return created, nil
}
