package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

// Input is the complete field set of a transaction write. Updates replace every field.
type Input struct {
	AccountID         uint
	Date              time.Time
	Amount            decimal.Decimal
	Fee               decimal.Decimal
	Kind              string
	CategoryID        *uint
	Description       string
	Tags              string
	IsRecurring       bool
	RecurringRule     map[string]any
	SavingsGoalID     *uint
	LiabilityID       *uint
	InvestmentID      *uint
	InvestmentAction  *string
	TransferAccountID *uint
	Source            string
	SMSReference      string
	SMSDetectedAt     *time.Time
}

// InputFromTransaction rebuilds the Input that would produce t; PATCH handlers overlay onto it.
// For an IN leg the result is expressed from that leg's point of view.
func InputFromTransaction(t models.Transaction) Input {
	return Input{
		AccountID:         t.AccountID,
		Date:              t.Date,
		Amount:            t.Amount,
		Fee:               t.Fee,
		Kind:              t.Kind,
		CategoryID:        t.CategoryID,
		Description:       t.Description,
		Tags:              t.Tags,
		IsRecurring:       t.IsRecurring,
		RecurringRule:     t.RecurringRule,
		SavingsGoalID:     t.SavingsGoalID,
		LiabilityID:       t.LiabilityID,
		InvestmentID:      t.InvestmentID,
		InvestmentAction:  t.InvestmentAction,
		TransferAccountID: t.TransferAccountID,
		Source:            t.Source,
		SMSReference:      t.SMSReference,
		SMSDetectedAt:     t.SMSDetectedAt,
	}
}

var validActions = map[string]bool{
	models.ActionBuy: true, models.ActionSell: true, models.ActionFee: true,
	models.ActionDividend: true, models.ActionInterest: true,
}

// normalize canonicalises enums and drops links that cannot apply to the kind.
func (in *Input) normalize() {
	in.Kind = strings.ToUpper(strings.TrimSpace(in.Kind))
	if in.Source == "" {
		in.Source = models.SourceManual
	}
	if in.InvestmentAction != nil {
		a := strings.ToUpper(strings.TrimSpace(*in.InvestmentAction))
		if a == "" {
			in.InvestmentAction = nil
		} else {
			in.InvestmentAction = &a
		}
	}
	in.Date = truncateDay(in.Date)
	switch in.Kind {
	case models.KindTransfer:
		in.LiabilityID = nil
		in.SavingsGoalID = nil
		in.InvestmentID = nil
		in.InvestmentAction = nil
	default:
		in.TransferAccountID = nil
	}
	if in.Kind == models.KindIncome {
		in.Fee = decimal.Zero
	}
	in.Description = common.Truncate(in.Description, 255)
}

// validate checks the field set in isolation. creating is true for new rows.
func (in *Input) validate(creating bool) error {
	switch in.Kind {
	case models.KindIncome, models.KindExpense, models.KindTransfer:
	default:
		return invalid("kind", "must be one of INCOME, EXPENSE, TRANSFER")
	}
	if in.AccountID == 0 {
		return invalid("account", "is required")
	}
	if in.Date.IsZero() {
		return invalid("date", "is required")
	}
	if in.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	if in.Fee.IsNegative() {
		return invalid("fee", "must not be negative")
	}
	if in.Kind == models.KindTransfer {
		if in.TransferAccountID == nil && creating {
			return invalid("transfer_account", "is required for transfers")
		}
		if in.TransferAccountID != nil && *in.TransferAccountID == in.AccountID {
			return invalid("transfer_account", "must differ from account")
		}
	}
	if in.LiabilityID != nil && in.Kind != models.KindExpense {
		return invalid("liability", "can only be linked to an expense")
	}
	if in.InvestmentAction != nil {
		if in.InvestmentID == nil {
			return invalid("investment_action", "requires an investment")
		}
		if !validActions[*in.InvestmentAction] {
			return invalid("investment_action", "unknown action %q", *in.InvestmentAction)
		}
	}
	return nil
}

// checkOwnership rejects references to rows the user does not own.
func (in *Input) checkOwnership(tx *gorm.DB, userID uint) error {
	refs := []struct {
		field string
		model any
		id    *uint
	}{
		{"account", &models.Account{}, &in.AccountID},
		{"transfer_account", &models.Account{}, in.TransferAccountID},
		{"category", &models.Category{}, in.CategoryID},
		{"liability", &models.Liability{}, in.LiabilityID},
		{"savings_goal", &models.SavingsGoal{}, in.SavingsGoalID},
		{"investment", &models.Investment{}, in.InvestmentID},
	}
	for _, r := range refs {
		if r.id == nil {
			continue
		}
		var n int64
		if err := tx.Model(r.model).Where("id = ? AND user_id = ?", *r.id, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return invalid(r.field, "not found")
		}
	}
	return nil
}

// apply copies the shared (non transfer-specific) fields onto t.
func (in *Input) applyShared(t *models.Transaction) {
	t.Date = in.Date
	t.Amount = in.Amount
	t.Kind = in.Kind
	t.CategoryID = in.CategoryID
	t.Description = in.Description
	t.Tags = in.Tags
	t.IsRecurring = in.IsRecurring
	t.RecurringRule = in.RecurringRule
	t.Source = in.Source
	t.SMSReference = in.SMSReference
	t.SMSDetectedAt = in.SMSDetectedAt
}

// apply writes the full field set onto a non-transfer row.
func (in *Input) apply(t *models.Transaction) {
	in.applyShared(t)
	t.AccountID = in.AccountID
	t.Fee = in.Fee
	t.SavingsGoalID = in.SavingsGoalID
	t.LiabilityID = in.LiabilityID
	t.InvestmentID = in.InvestmentID
	t.InvestmentAction = in.InvestmentAction
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
