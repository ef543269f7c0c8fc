package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestAdvance(t *testing.T) {
	cases := []struct {
		freq string
		from time.Time
		want time.Time
	}{
		{models.FrequencyDaily, date(2024, 2, 28), date(2024, 2, 29)},
		{models.FrequencyWeekly, date(2024, 12, 28), date(2025, 1, 4)},
		{models.FrequencyMonthly, date(2024, 1, 31), date(2024, 2, 28)},
		{models.FrequencyMonthly, date(2024, 12, 15), date(2025, 1, 15)},
		{models.FrequencyYearly, date(2024, 2, 29), date(2025, 2, 28)},
		{models.FrequencyYearly, date(2024, 6, 1), date(2025, 6, 1)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Advance(tc.from, tc.freq), "%s from %s", tc.freq, tc.from.Format("2006-01-02"))
	}
}

func TestOccurrences(t *testing.T) {
	r := models.RecurringTransaction{Date: date(2024, 1, 10), Frequency: models.FrequencyMonthly}
	assert.Equal(t, []time.Time{date(2024, 1, 10), date(2024, 2, 10), date(2024, 3, 10)}, Occurrences(r, date(2024, 3, 31)))

	last := date(2024, 2, 10)
	r.LastExecuted = &last
	assert.Equal(t, []time.Time{date(2024, 3, 10)}, Occurrences(r, date(2024, 3, 31)))

	end := date(2024, 3, 1)
	r.EndDate = &end
	assert.Empty(t, Occurrences(r, date(2024, 12, 31)))
}

type recorder struct {
	inputs []ledger.Input
}

func (r *recorder) Create(_ context.Context, _ uint, in ledger.Input) (*models.Transaction, error) {
	r.inputs = append(r.inputs, in)
	return &models.Transaction{ID: uint(len(r.inputs))}, nil
}

func TestMaterializeWritesThroughLedger(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "subscriber")
	acct := testdb.Account(t, db, u.ID, "Bank")
	end := date(2024, 1, 20)
	r := models.RecurringTransaction{
		UserID: u.ID, AccountID: acct.ID, Date: date(2024, 1, 1), Amount: decimal.NewFromInt(15),
		Kind: models.KindExpense, Frequency: models.FrequencyWeekly, EndDate: &end,
	}
	require.NoError(t, db.Create(&r).Error)

	rec := &recorder{}
	m := NewMaterializer(db, rec, common.NewSilentLogger())
	n, err := m.Run(context.Background(), date(2024, 1, 1), 60)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, rec.inputs, 3)
	assert.Equal(t, models.SourceRecurring, rec.inputs[0].Source)
	assert.Equal(t, "Recurring transaction", rec.inputs[0].Description)
	assert.Equal(t, date(2024, 1, 15), rec.inputs[2].Date)

	var stored models.RecurringTransaction
	require.NoError(t, db.First(&stored, r.ID).Error)
	require.NotNil(t, stored.LastExecuted)
	assert.Equal(t, "2024-01-15", stored.LastExecuted.Format("2006-01-02"))

	n, err = m.Run(context.Background(), date(2024, 1, 1), 60)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMaterializeCreatesLedgerRows(t *testing.T) {
	db := testdb.Open(t)
	logger := common.NewSilentLogger()
	u := testdb.User(t, db, "subscriber")
	acct := testdb.Account(t, db, u.ID, "Bank")
	require.NoError(t, db.Create(&models.RecurringTransaction{
		UserID: u.ID, AccountID: acct.ID, Date: date(2024, 5, 31), Amount: decimal.NewFromInt(999),
		Kind: models.KindExpense, Frequency: models.FrequencyMonthly, Description: "Netflix",
	}).Error)

	m := NewMaterializer(db, ledger.NewStore(db, logger), logger)
	n, err := m.Run(context.Background(), date(2024, 6, 1), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows []models.Transaction
	require.NoError(t, db.Order("date").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-05-31", rows[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-06-28", rows[1].Date.Format("2006-01-02"))
	assert.True(t, rows[1].IsRecurring)
	assert.Equal(t, "Netflix", rows[1].Description)
}

func TestReminders(t *testing.T) {
	db := testdb.Open(t)
	logger := common.NewSilentLogger()
	u := testdb.User(t, db, "subscriber")
	acct := testdb.Account(t, db, u.ID, "Bank")
	for _, day := range []int{12, 30} {
		require.NoError(t, db.Create(&models.RecurringTransaction{
			UserID: u.ID, AccountID: acct.ID, Date: date(2024, 7, day), Amount: decimal.NewFromInt(10),
			Kind: models.KindExpense, Frequency: models.FrequencyMonthly,
		}).Error)
	}

	rem := NewReminders(db, notify.NewService(db, nil, logger), logger)
	today := date(2024, 7, 10)
	n, err := rem.Check(context.Background(), today, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = rem.Check(context.Background(), today, 3)
	require.NoError(t, err)
	assert.Zero(t, n)

	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "Upcoming subscription on 2024-07-12", notes[0].Title)
	assert.Equal(t, models.NotificationCategoryRecurring, notes[0].Category)
}
