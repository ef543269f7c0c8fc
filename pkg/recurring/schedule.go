// Package recurring turns recurring transaction templates into ledger rows and
// reminds users about occurrences that are about to fall due.
package recurring

import (
	"time"

	"github.com/Simonwafula/personal-finance-app/models"
)

// Advance moves d forward by one period. Monthly steps clamp the day to 28 so every
// month has the occurrence; yearly steps keep Feb 29 on Feb 28.
func Advance(d time.Time, frequency string) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return d.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return d.AddDate(0, 0, 7)
	case models.FrequencyYearly:
		day := d.Day()
		if d.Month() == time.February && day == 29 {
			day = 28
		}
		return time.Date(d.Year()+1, d.Month(), day, 0, 0, 0, 0, d.Location())
	default:
		return addMonth(d)
	}
}

func addMonth(d time.Time) time.Time {
	y, m := d.Year(), d.Month()+1
	if m > time.December {
		m = time.January
		y++
	}
	return time.Date(y, m, min(d.Day(), 28), 0, 0, 0, 0, d.Location())
}

// Next is the first occurrence not yet materialised.
func Next(r models.RecurringTransaction) time.Time {
	if r.LastExecuted == nil {
		return r.Date
	}
	return Advance(*r.LastExecuted, r.Frequency)
}

// Occurrences lists the pending dates of r up to and including horizon, honouring EndDate.
func Occurrences(r models.RecurringTransaction, horizon time.Time) []time.Time {
	var out []time.Time
	for d := Next(r); !d.After(horizon); d = Advance(d, r.Frequency) {
		if r.EndDate != nil && d.After(*r.EndDate) {
			break
		}
		out = append(out, d)
	}
	return out
}
