package statement

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestInferKindPriority(t *testing.T) {
	prev := dec("1000")
	tests := []struct {
		name     string
		tx       Transaction
		prev     *decimal.Decimal
		fallback string
		want     string
	}{
		{"credit column", Transaction{Credit: ptr(dec("5")), Debit: ptr(dec("0")), Balance: ptr(dec("1"))}, &prev, "", KindIncome},
		{"debit column beats balance", Transaction{Credit: ptr(dec("0")), Debit: ptr(dec("5")), Balance: ptr(dec("2000"))}, &prev, "", KindExpense},
		{"balance drop", Transaction{Description: "salary", Balance: ptr(dec("900"))}, &prev, "", KindExpense},
		{"balance unchanged", Transaction{Balance: ptr(dec("1000"))}, &prev, KindExpense, KindIncome},
		{"debit keyword", Transaction{Description: "ATM Withdrawal Westlands"}, nil, "", KindExpense},
		{"credit keyword", Transaction{Description: "RTGS from employer"}, nil, KindExpense, KindIncome},
		{"fallback", Transaction{Description: "misc"}, nil, KindExpense, KindExpense},
		{"default", Transaction{Description: "misc"}, nil, "", KindIncome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.tx, tt.prev, tt.fallback))
		})
	}
}

func TestPreviewReversesDescendingStatements(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC) }
	txns := []Transaction{
		{Date: d(3), Description: "c", Amount: ptr(dec("10")), Balance: ptr(dec("110"))},
		{Date: d(2), Description: "b", Amount: ptr(dec("50")), Balance: ptr(dec("100"))},
		{Date: d(1), Description: "a", Amount: ptr(dec("150")), Balance: ptr(dec("150"))},
	}
	rows, sum := Preview(txns, nil, KindIncome)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].Description, rows[1].Description, rows[2].Description})
	assert.Equal(t, []string{KindIncome, KindExpense, KindIncome}, []string{rows[0].Kind, rows[1].Kind, rows[2].Kind})
	assert.Equal(t, Summary{Total: 3, Income: 2, Expense: 1}, sum)
	require.NotNil(t, rows[2].Balance)
	assert.Equal(t, "110.00", *rows[2].Balance)
}

func TestPreviewResolvesColumnAmounts(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{
		{Date: day, Description: "paid", Amount: ptr(dec("0")), Debit: ptr(dec("0")), Credit: ptr(dec("700")), Balance: ptr(dec("700"))},
		{Date: day, Description: "bought", Amount: ptr(dec("45")), Debit: ptr(dec("45")), Credit: ptr(dec("0")), Balance: ptr(dec("655"))},
	}
	rows, _ := Preview(txns, nil, "")
	require.Len(t, rows, 2)
	assert.Equal(t, "700.00", rows[0].Amount)
	assert.Equal(t, "45.00", rows[1].Amount)
	assert.Equal(t, KindExpense, rows[1].Kind)
}

func TestPreviewDropsRowsWithoutAmount(t *testing.T) {
	rows, sum := Preview([]Transaction{{Date: time.Now(), Description: "x"}}, nil, "")
	assert.Empty(t, rows)
	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 1, sum.Income)
}

func TestPreviewKeepsLongDescriptionsValidUTF8(t *testing.T) {
	long := strings.Repeat("a", 254) + "é tail"
	rows, _ := Preview([]Transaction{{Date: time.Now(), Description: long, Amount: ptr(dec("5"))}}, nil, KindExpense)
	require.Len(t, rows, 1)
	assert.True(t, utf8.ValidString(rows[0].Description))
	assert.Equal(t, strings.Repeat("a", 254)+"é", rows[0].Description)
}
