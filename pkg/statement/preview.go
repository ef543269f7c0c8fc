package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

const (
	KindIncome  = "INCOME"
	KindExpense = "EXPENSE"
)

var (
	debitWords  = []string{"withdrawal", "purchase", "fee", "charge", "to ", "cash"}
	creditWords = []string{"deposit", "salary", "disbursement", "rtgs", "payoff"}
)

// Row is a preview line as shown to the user before confirming an import.
type Row struct {
	Date        string  `json:"date"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Balance     *string `json:"balance"`
}

type Summary struct {
	Total   int `json:"total"`
	Income  int `json:"income"`
	Expense int `json:"expense"`
}

// Preview orders rows oldest first and infers each row's kind. openingBalance seeds
// the balance comparison for the first row; firstKind is used only if the first row
// cannot be classified otherwise.
func Preview(txns []Transaction, openingBalance *decimal.Decimal, firstKind string) ([]Row, Summary) {
	if len(txns) > 1 && txns[0].Date.After(txns[len(txns)-1].Date) {
		reversed := make([]Transaction, len(txns))
		for i, t := range txns {
			reversed[len(txns)-1-i] = t
		}
		txns = reversed
	}

	rows := make([]Row, 0, len(txns))
	var sum Summary
	prev := openingBalance
	for i, tx := range txns {
		fallback := ""
		if i == 0 {
			fallback = firstKind
		}
		kind := InferKind(tx, prev, fallback)
		if kind == KindIncome {
			sum.Income++
		} else {
			sum.Expense++
		}

		amount := resolveAmount(tx, kind)
		if amount == nil {
			continue
		}
		desc := common.Truncate(tx.Description, 255)
		row := Row{
			Date:        tx.Date.Format("2006-01-02"),
			Amount:      amount.StringFixed(2),
			Kind:        kind,
			Description: desc,
		}
		if tx.Balance != nil {
			b := tx.Balance.StringFixed(2)
			row.Balance = &b
			prev = tx.Balance
		}
		rows = append(rows, row)
	}
	sum.Total = len(rows)
	return rows, sum
}

// InferKind applies, in order: explicit debit/credit columns, the running balance
// delta, description keywords, the caller's fallback, then INCOME.
func InferKind(tx Transaction, prevBalance *decimal.Decimal, fallback string) string {
	if tx.Credit != nil && tx.Credit.IsPositive() {
		return KindIncome
	}
	if tx.Debit != nil && tx.Debit.IsPositive() {
		return KindExpense
	}
	if tx.Balance != nil && prevBalance != nil {
		if tx.Balance.Sub(*prevBalance).IsNegative() {
			return KindExpense
		}
		return KindIncome
	}
	desc := strings.ToLower(tx.Description)
	for _, w := range debitWords {
		if strings.Contains(desc, w) {
			return KindExpense
		}
	}
	for _, w := range creditWords {
		if strings.Contains(desc, w) {
			return KindIncome
		}
	}
	if fallback != "" {
		return fallback
	}
	return KindIncome
}

func resolveAmount(tx Transaction, kind string) *decimal.Decimal {
	if tx.Credit != nil || tx.Debit != nil {
		if kind == KindIncome && tx.Credit != nil {
			return tx.Credit
		}
		if kind == KindExpense && tx.Debit != nil {
			return tx.Debit
		}
	}
	return tx.Amount
}
