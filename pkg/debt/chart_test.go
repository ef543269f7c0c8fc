package debt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
)

func TestBalanceSeriesDeclines(t *testing.T) {
	res := Simulate(models.DebtPlan{Strategy: models.StrategyAvalanche, MonthlyAmountAvailable: dec("300"), StartDate: start}, twoDebts())
	points := BalanceSeries(res)

	require.Greater(t, len(points), 2)
	assert.InDelta(t, 1500.0, points[0].Balance, 0.001)
	assert.InDelta(t, 0.0, points[len(points)-1].Balance, 0.001)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Month.After(points[i-1].Month))
		assert.LessOrEqual(t, points[i].Balance, points[i-1].Balance)
	}
}

func TestRenderChart(t *testing.T) {
	res := Simulate(models.DebtPlan{Strategy: models.StrategySnowball, MonthlyAmountAvailable: dec("300"), StartDate: start}, twoDebts())
	png, err := RenderChart(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = RenderChart(Result{})
	assert.Error(t, err)
}
