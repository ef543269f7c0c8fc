// Package debt simulates month-by-month payoff of a user's liabilities.
package debt

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/models"
)

// MaxMonths bounds a simulation whose interest outpaces its payments.
const MaxMonths = 600

// Line is one liability's activity in one month.
type Line struct {
	Month           time.Time       `json:"month"`
	LiabilityID     uint            `json:"liability_id"`
	LiabilityName   string          `json:"liability_name"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Interest        decimal.Decimal `json:"interest"`
	Payment         decimal.Decimal `json:"payment"`
	Principal       decimal.Decimal `json:"principal"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
}

// Result is the outcome of Simulate. Error is set, with RequiredMinimum, when the
// monthly amount cannot cover the minimum payments; no months are scheduled then.
type Result struct {
	Strategy               string           `json:"strategy"`
	Months                 int              `json:"months"`
	MonthlyAmountAvailable decimal.Decimal  `json:"monthly_amount_available"`
	TotalInterest          decimal.Decimal  `json:"total_interest"`
	TotalPaid              decimal.Decimal  `json:"total_paid"`
	Schedule               []Line           `json:"schedule"`
	Error                  string           `json:"error,omitempty"`
	RequiredMinimum        *decimal.Decimal `json:"required_minimum,omitempty"`
}

// ErrInsufficientBudget is the message carried in Result.Error.
const ErrInsufficientBudget = "Monthly amount is less than sum of minimum payments."

// Order sorts liabilities by payoff priority: highest rate first for avalanche,
// smallest balance first for snowball. Ties keep id order.
func Order(strategy string, debts []models.Liability) {
	sort.SliceStable(debts, func(i, j int) bool {
		a, b := debts[i], debts[j]
		if strategy == models.StrategySnowball {
			if !a.PrincipalBalance.Equal(b.PrincipalBalance) {
				return a.PrincipalBalance.LessThan(b.PrincipalBalance)
			}
		} else if !a.InterestRate.Equal(b.InterestRate) {
			return a.InterestRate.GreaterThan(b.InterestRate)
		}
		return a.ID < b.ID
	})
}

// Simulate runs the plan against liabilities without touching either.
func Simulate(plan models.DebtPlan, liabilities []models.Liability) Result {
	res := Result{
		Strategy:               plan.Strategy,
		MonthlyAmountAvailable: plan.MonthlyAmountAvailable,
		Schedule:               []Line{},
	}

	debts := make([]models.Liability, 0, len(liabilities))
	for _, l := range liabilities {
		if l.PrincipalBalance.IsPositive() {
			debts = append(debts, l)
		}
	}
	if len(debts) == 0 {
		return res
	}

	required := decimal.Zero
	for _, d := range debts {
		required = required.Add(d.MinimumPayment)
	}
	if plan.MonthlyAmountAvailable.LessThan(required) {
		res.Error = ErrInsufficientBudget
		res.RequiredMinimum = &required
		return res
	}

	Order(plan.Strategy, debts)

	balances := make(map[uint]decimal.Decimal, len(debts))
	for _, d := range debts {
		balances[d.ID] = d.PrincipalBalance
	}
	hundredTwelve := decimal.NewFromInt(1200)

	m := 0
	for ; m < MaxMonths; m++ {
		minimums := decimal.Zero
		for _, d := range debts {
			if balances[d.ID].IsPositive() {
				minimums = minimums.Add(d.MinimumPayment)
			}
		}
		if allPaid(debts, balances) {
			break
		}
		extra := plan.MonthlyAmountAvailable.Sub(minimums)
		month := AddMonths(plan.StartDate, m)

		for i, d := range debts {
			bal := balances[d.ID]
			if !bal.IsPositive() {
				continue
			}
			interest := bal.Mul(d.InterestRate).Div(hundredTwelve).RoundBank(2)
			payment := d.MinimumPayment
			// the extra only ever goes to the top-priority debt; once it is paid off the extra is unspent
			if i == 0 && extra.IsPositive() {
				payment = payment.Add(extra)
			}
			if limit := bal.Add(interest); payment.GreaterThan(limit) {
				payment = limit
			}
			ending := bal.Add(interest).Sub(payment)
			balances[d.ID] = ending

			res.TotalInterest = res.TotalInterest.Add(interest)
			res.TotalPaid = res.TotalPaid.Add(payment)
			res.Schedule = append(res.Schedule, Line{
				Month:           month,
				LiabilityID:     d.ID,
				LiabilityName:   d.Name,
				StartingBalance: bal,
				Interest:        interest,
				Payment:         payment,
				Principal:       payment.Sub(interest),
				EndingBalance:   ending,
			})
		}
	}
	res.Months = m + 1
	if res.Months > MaxMonths {
		res.Months = MaxMonths
	}
	return res
}

func allPaid(debts []models.Liability, balances map[uint]decimal.Decimal) bool {
	for _, d := range debts {
		if balances[d.ID].IsPositive() {
			return false
		}
	}
	return true
}

// AddMonths advances t by n calendar months, clamping the day to the target month's length.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
