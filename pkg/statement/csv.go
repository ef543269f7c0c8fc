package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoHeader is returned when a CSV has no recognisable date and amount columns.
var ErrNoHeader = errors.New("csv: missing date or amount columns")

var csvColumns = map[string][]string{
	"date":        {"date", "transaction date", "completion time", "value date", "posting date"},
	"description": {"description", "details", "narration", "narrative", "particulars", "transaction details"},
	"amount":      {"amount", "transaction amount"},
	"debit":       {"debit", "withdrawn", "withdrawal", "money out", "paid out"},
	"credit":      {"credit", "paid in", "deposit", "money in"},
	"balance":     {"balance", "running balance"},
}

// ParseCSV reads an exported statement. A single signed amount column is split into
// debit (negative) and credit (positive).
func ParseCSV(r io.Reader) ([]Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	cols := mapColumns(header)
	if _, ok := cols["date"]; !ok {
		return nil, ErrNoHeader
	}
	_, hasAmount := cols["amount"]
	_, hasDebit := cols["debit"]
	_, hasCredit := cols["credit"]
	if !hasAmount && !hasDebit && !hasCredit {
		return nil, ErrNoHeader
	}

	var out []Transaction
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		date, err := parseCSVDate(field("date"))
		if err != nil {
			continue
		}
		tx := Transaction{Date: date, Description: field("description")}
		tx.Balance = csvAmount(field("balance"))
		tx.Debit = csvAmount(field("debit"))
		tx.Credit = csvAmount(field("credit"))
		if amt := csvAmount(field("amount")); amt != nil {
			abs := amt.Abs()
			tx.Amount = &abs
			if !hasDebit && !hasCredit {
				if amt.IsNegative() {
					tx.Debit = &abs
				} else {
					tx.Credit = &abs
				}
			}
		}
		if tx.Amount == nil {
			switch {
			case tx.Credit != nil && tx.Credit.IsPositive():
				tx.Amount = tx.Credit
			case tx.Debit != nil:
				abs := tx.Debit.Abs()
				tx.Debit = &abs
				tx.Amount = &abs
			}
		}
		if tx.Amount == nil {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func mapColumns(header []string) map[string]int {
	cols := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for name, aliases := range csvColumns {
			if _, taken := cols[name]; taken {
				continue
			}
			for _, a := range aliases {
				if h == a {
					cols[name] = i
				}
			}
		}
	}
	return cols
}

func parseCSVDate(s string) (time.Time, error) {
	if len(s) > 10 {
		// "2024-01-05 13:45:10" style timestamps
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return ParseDate(s)
}

func csvAmount(s string) *decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
