package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseSalaryRowWithKnownPriorBalance(t *testing.T) {
	text := "01/02/2024\nSalary Payment\n5,000.00\n15,000.00\n"
	parsed := Parse(text)
	require.Len(t, parsed.Transactions, 1)

	tx := parsed.Transactions[0]
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Salary Payment", tx.Description)
	assert.True(t, tx.Amount.Equal(dec("5000")))
	assert.True(t, tx.Balance.Equal(dec("15000")))

	prior := dec("10000")
	rows, sum := Preview(parsed.Transactions, &prior, "")
	require.Len(t, rows, 1)
	assert.Equal(t, KindIncome, rows[0].Kind)
	assert.Equal(t, "5000.00", rows[0].Amount)
	assert.Equal(t, "2024-02-01", rows[0].Date)
	assert.Equal(t, Summary{Total: 1, Income: 1}, sum)
}

func TestParseDescriptionBeforeDate(t *testing.T) {
	text := `Opening line
POS PURCHASE NAIVAS
03-01-24
1,250.50
48,749.50
ATM WITHDRAWAL
04-01-24
2,000.00
46,749.50`
	parsed := Parse(text)
	assert.Equal(t, TypeGeneric, parsed.Type)
	require.Len(t, parsed.Transactions, 2)
	assert.Equal(t, "Opening line POS PURCHASE NAIVAS", parsed.Transactions[0].Description)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), parsed.Transactions[0].Date)
	assert.Equal(t, "ATM WITHDRAWAL", parsed.Transactions[1].Description)
	assert.True(t, parsed.Transactions[1].Amount.Equal(dec("2000")))
}

func TestParseSkipsNoiseAndPageFooter(t *testing.T) {
	text := `Equity Bank
Account Number
Transactions
Value Date
05/01/2024
Balance
Mobile transfer to Jane
500.00
Disclaimer
9,500.00
Page
1
of
3
06/01/2024
Fee
30.00
9,470.00
This is a computer generated statement`
	parsed := Parse(text)
	assert.Equal(t, TypeEquity, parsed.Type)
	require.Len(t, parsed.Transactions, 2)
	assert.Equal(t, "Mobile transfer to Jane", parsed.Transactions[0].Description)
	assert.True(t, parsed.Transactions[0].Balance.Equal(dec("9500")))
	assert.Equal(t, "Fee", parsed.Transactions[1].Description)
}

func TestEquityIgnoresRowsBeforeMarker(t *testing.T) {
	text := "EQUITY\n01/01/2024\nSummary\n10.00\n20.00\nTransactions\n02/01/2024\nDeposit\n100.00\n120.00"
	parsed := Parse(text)
	require.Len(t, parsed.Transactions, 1)
	assert.Equal(t, "Deposit", parsed.Transactions[0].Description)
}

func TestParseMpesaThreeAmounts(t *testing.T) {
	text := `M-PESA STATEMENT
10/03/2024
Pay Bill to KPLC
0.00
1,500.00
3,500.00
11/03/2024
Funds received from JOHN
2,000.00
0.00
5,500.00`
	parsed := Parse(text)
	assert.Equal(t, TypeMpesa, parsed.Type)
	require.Len(t, parsed.Transactions, 2)

	first := parsed.Transactions[0]
	require.NotNil(t, first.Debit)
	require.NotNil(t, first.Credit)
	assert.True(t, first.Debit.IsZero())
	assert.True(t, first.Credit.Equal(dec("1500")))
	assert.True(t, first.Balance.Equal(dec("3500")))
}

func TestRowsNeedTwoAmountsAndDescription(t *testing.T) {
	text := "01/01/2024\n100.00\n02/01/2024\n50.00\n60.00"
	parsed := Parse(text)
	assert.Empty(t, parsed.Transactions)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, TypeMpesa, Detect("safaricom mpesa statement"))
	assert.Equal(t, TypeKCB, Detect("kcb bank kenya"))
	assert.Equal(t, TypeAbsa, Detect("absa bank"))
	assert.Equal(t, TypeGeneric, Detect("some bank"))
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]time.Time{
		"31/12/2023": time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		"31-12-2023": time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		"01/02/24":   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		"01-02-24":   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDate("12/31/2023")
	assert.Error(t, err)
}

func TestCustomNoise(t *testing.T) {
	noise := Noise{Exact: map[string]bool{"skip me": true}}
	p := Parser{Noise: &noise}
	parsed := p.Parse("Skip Me\nRent\n01/04/2024\n800.00\n200.00")
	require.Len(t, parsed.Transactions, 1)
	assert.Equal(t, "Rent", parsed.Transactions[0].Description)
}
