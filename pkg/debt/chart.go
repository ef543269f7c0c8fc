package debt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// BalancePoint is the total outstanding balance at the end of a month.
type BalancePoint struct {
	Month   time.Time
	Balance float64
}

// BalanceSeries folds a schedule into total ending balance per month. The opening
// total is included as the first point.
func BalanceSeries(res Result) []BalancePoint {
	if len(res.Schedule) == 0 {
		return nil
	}
	var points []BalancePoint
	opening := map[uint]bool{}
	start := 0.0
	for _, l := range res.Schedule {
		if !opening[l.LiabilityID] {
			opening[l.LiabilityID] = true
			start += l.StartingBalance.InexactFloat64()
		}
	}
	first := res.Schedule[0].Month
	points = append(points, BalancePoint{Month: AddMonths(first, -1), Balance: start})

	for _, l := range res.Schedule {
		n := len(points)
		if !points[n-1].Month.Equal(l.Month) {
			points = append(points, BalancePoint{Month: l.Month})
			n++
		}
		points[n-1].Balance += l.EndingBalance.InexactFloat64()
	}
	return points
}

// RenderChart draws the payoff curve as a PNG.
func RenderChart(res Result) ([]byte, error) {
	points := BalanceSeries(res)
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Month
		yValues[i] = p.Balance
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Debt payoff (%s)", res.Strategy),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Outstanding balance",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("dc2626"),
					StrokeWidth: 2.5,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
