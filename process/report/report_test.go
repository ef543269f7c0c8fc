package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2024-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthBounds("12/2024")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "reporter")
	bank := testdb.Account(t, db, u.ID, "Bank")
	wallet := testdb.Account(t, db, u.ID, "Wallet")
	food := testdb.Category(t, db, u.ID, "Food", models.KindExpense)
	store := ledger.NewStore(db, common.NewSilentLogger())
	ctx := context.Background()

	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	for _, in := range []ledger.Input{
		{AccountID: bank.ID, Kind: models.KindIncome, Date: d(1), Amount: decimal.RequireFromString("5000"), Description: "Salary"},
		{AccountID: bank.ID, Kind: models.KindExpense, Date: d(2), Amount: decimal.RequireFromString("300"), CategoryID: &food.ID},
		{AccountID: bank.ID, Kind: models.KindExpense, Date: d(3), Amount: decimal.RequireFromString("200"), CategoryID: &food.ID},
		{AccountID: bank.ID, Kind: models.KindTransfer, TransferAccountID: &wallet.ID, Date: d(4), Amount: decimal.RequireFromString("1000"), Fee: decimal.RequireFromString("15")},
		{AccountID: bank.ID, Kind: models.KindExpense, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("999")},
	} {
		_, err := store.Create(ctx, u.ID, in)
		require.NoError(t, err)
	}

	r, err := Build(ctx, db, "reporter", "2024-03", true)
	require.NoError(t, err)
	assert.EqualValues(t, 5, r.Count)
	assert.Equal(t, "5000.00", r.Income.StringFixed(2))
	assert.Equal(t, "500.00", r.Expense.StringFixed(2))
	assert.Equal(t, "15.00", r.Fees.StringFixed(2))
	assert.Equal(t, "1000.00", r.Transfers.StringFixed(2))
	assert.Equal(t, "4485.00", r.Net.StringFixed(2))
	require.Len(t, r.Rows, 5)

	require.Len(t, r.Categories, 2)
	assert.Equal(t, CategoryTotal{Name: "Food", Kind: models.KindExpense, Total: r.Categories[0].Total, Count: 2}, r.Categories[0])
	assert.Equal(t, "500.00", r.Categories[0].Total.StringFixed(2))
	assert.Equal(t, "Uncategorised", r.Categories[1].Name)

	var buf bytes.Buffer
	r.WriteText(&buf)
	assert.Contains(t, buf.String(), "net=4485.00")

	_, err = Build(ctx, db, "nobody", "2024-03", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
