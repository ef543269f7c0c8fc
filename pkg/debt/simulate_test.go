package debt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var start = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

func twoDebts() []models.Liability {
	return []models.Liability{
		{ID: 1, Name: "A", PrincipalBalance: dec("1000"), InterestRate: dec("20"), MinimumPayment: dec("50")},
		{ID: 2, Name: "B", PrincipalBalance: dec("500"), InterestRate: dec("10"), MinimumPayment: dec("50")},
	}
}

func firstMonthPayments(res Result) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, l := range res.Schedule {
		if l.Month.Equal(res.Schedule[0].Month) {
			out[l.LiabilityName] = l.Payment
		}
	}
	return out
}

func TestStrategyDecidesWhoGetsExtra(t *testing.T) {
	plan := models.DebtPlan{Strategy: models.StrategyAvalanche, MonthlyAmountAvailable: dec("300"), StartDate: start}
	res := Simulate(plan, twoDebts())
	require.Empty(t, res.Error)
	pay := firstMonthPayments(res)
	assert.True(t, pay["A"].Equal(dec("250")), pay["A"].String())
	assert.True(t, pay["B"].Equal(dec("50")))
	assert.Equal(t, "A", res.Schedule[0].LiabilityName)

	plan.Strategy = models.StrategySnowball
	res = Simulate(plan, twoDebts())
	pay = firstMonthPayments(res)
	assert.True(t, pay["B"].Equal(dec("250")), pay["B"].String())
	assert.True(t, pay["A"].Equal(dec("50")))
	assert.Equal(t, "B", res.Schedule[0].LiabilityName)
}

func TestInsufficientBudget(t *testing.T) {
	plan := models.DebtPlan{Strategy: models.StrategyAvalanche, MonthlyAmountAvailable: dec("99.99"), StartDate: start}
	res := Simulate(plan, twoDebts())

	assert.Equal(t, ErrInsufficientBudget, res.Error)
	require.NotNil(t, res.RequiredMinimum)
	assert.True(t, res.RequiredMinimum.Equal(dec("100")))
	assert.Zero(t, res.Months)
	assert.Empty(t, res.Schedule)
}

func TestNoDebts(t *testing.T) {
	paid := []models.Liability{{ID: 1, PrincipalBalance: decimal.Zero, MinimumPayment: dec("10")}}
	res := Simulate(models.DebtPlan{MonthlyAmountAvailable: dec("0"), StartDate: start}, paid)
	assert.Empty(t, res.Error)
	assert.Zero(t, res.Months)
	assert.NotNil(t, res.Schedule)
	assert.Empty(t, res.Schedule)
}

func TestInterestAndCappedPayment(t *testing.T) {
	debts := []models.Liability{{ID: 1, Name: "Card", PrincipalBalance: dec("100"), InterestRate: dec("12"), MinimumPayment: dec("20")}}
	res := Simulate(models.DebtPlan{Strategy: models.StrategyAvalanche, MonthlyAmountAvailable: dec("500"), StartDate: start}, debts)

	require.Len(t, res.Schedule, 1)
	line := res.Schedule[0]
	assert.True(t, line.Interest.Equal(dec("1")))
	assert.True(t, line.Payment.Equal(dec("101")), "payment is capped at balance plus interest")
	assert.True(t, line.Principal.Equal(dec("100")))
	assert.True(t, line.EndingBalance.IsZero())
	// the loop notices the payoff on its second pass
	assert.Equal(t, 2, res.Months)
	assert.True(t, res.TotalInterest.Equal(dec("1")))
}

func TestExtraStaysOnTopDebtAfterItIsPaid(t *testing.T) {
	debts := []models.Liability{
		{ID: 1, Name: "Small", PrincipalBalance: dec("100"), InterestRate: dec("0"), MinimumPayment: dec("10")},
		{ID: 2, Name: "Big", PrincipalBalance: dec("1000"), InterestRate: dec("0"), MinimumPayment: dec("10")},
	}
	res := Simulate(models.DebtPlan{Strategy: models.StrategySnowball, MonthlyAmountAvailable: dec("110"), StartDate: start}, debts)

	var bigPayments []decimal.Decimal
	for _, l := range res.Schedule {
		if l.LiabilityName == "Big" {
			bigPayments = append(bigPayments, l.Payment)
		}
	}
	require.Len(t, bigPayments, 100)
	for i, p := range bigPayments {
		assert.True(t, p.Equal(dec("10")), "month %d paid %s", i+1, p)
	}
	assert.Equal(t, 101, res.Months)
	assert.True(t, res.Schedule[0].Payment.Equal(dec("100")), "extra capped at the small balance")
}

func TestMonthCapStopsRunawayInterest(t *testing.T) {
	debts := []models.Liability{{ID: 1, Name: "Shark", PrincipalBalance: dec("1000"), InterestRate: dec("100"), MinimumPayment: dec("10")}}
	res := Simulate(models.DebtPlan{Strategy: models.StrategyAvalanche, MonthlyAmountAvailable: dec("10"), StartDate: start}, debts)

	assert.Equal(t, MaxMonths, res.Months)
	assert.Len(t, res.Schedule, MaxMonths)
}

func TestSimulateDoesNotMutateInputs(t *testing.T) {
	debts := twoDebts()
	Simulate(models.DebtPlan{Strategy: models.StrategySnowball, MonthlyAmountAvailable: dec("300"), StartDate: start}, debts)
	assert.Equal(t, uint(1), debts[0].ID)
	assert.True(t, debts[0].PrincipalBalance.Equal(dec("1000")))
}

func TestAddMonthsClampsDay(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), AddMonths(start, 1))
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), AddMonths(start, 3))
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), AddMonths(start, -1))
}
