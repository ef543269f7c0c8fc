// Package statement turns bank and mobile-money statements into importable transactions.
package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeMpesa   = "mpesa"
	TypeEquity  = "equity"
	TypeKCB     = "kcb"
	TypeAbsa    = "absa"
	TypeGeneric = "generic"
	TypeCSV     = "csv"
)

var (
	dateRe   = regexp.MustCompile(`^\d{2}[/-]\d{2}[/-]\d{2,4}$`)
	amountRe = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})*|\d+)\.\d{2}$`)

	dateLayouts = []string{"02/01/2006", "02-01-2006", "02/01/06", "02-01-06"}
)

// Noise is the set of header, footer and column-label lines skipped while scanning.
type Noise struct {
	Exact    map[string]bool
	Contains []string
	Prefixes []string
}

// DefaultNoise covers the Kenyan bank and M-Pesa layouts seen so far.
var DefaultNoise = Noise{
	Exact: map[string]bool{
		"account": true, "statement": true, "account number": true, "currency": true,
		"account branch": true, "statement date": true, "statement period": true,
		"account created": true, "transactions": true, "transaction details": true,
		"payment reference": true, "value date": true, "credit (money": true, "in)": true,
		"debit (money out)": true, "balance": true, "disclaimer": true, "total": true,
	},
	Contains: []string{
		"record is produced",
		"computer generated statement",
		"contact us for 24 hours assistance",
		"equitybank.co.ke",
	},
	Prefixes: []string{"statement date", "statement period", "account created"},
}

func (n Noise) match(line string) bool {
	lower := strings.ToLower(line)
	if n.Exact[lower] {
		return true
	}
	for _, c := range n.Contains {
		if strings.Contains(lower, c) {
			return true
		}
	}
	for _, p := range n.Prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// Transaction is one parsed statement row. Debit and Credit are only set for
// statements that carry separate columns.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      *decimal.Decimal
	Balance     *decimal.Decimal
	Debit       *decimal.Decimal
	Credit      *decimal.Decimal
}

type Parsed struct {
	Type         string
	Transactions []Transaction
}

// layout drives the scan loop for one issuer.
type layout struct {
	startMarker string
	amounts     int
}

var layouts = map[string]layout{
	TypeMpesa:   {amounts: 3},
	TypeEquity:  {startMarker: "Transactions", amounts: 2},
	TypeKCB:     {amounts: 2},
	TypeAbsa:    {amounts: 2},
	TypeGeneric: {amounts: 2},
}

// Parser holds the noise rules; the zero value uses DefaultNoise.
type Parser struct {
	Noise *Noise
}

// Parse parses decoded statement text with the default rules.
func Parse(text string) Parsed {
	return Parser{}.Parse(text)
}

func (p Parser) Parse(text string) Parsed {
	lines := Lines(text)
	kind := Detect(strings.ToLower(strings.Join(lines, "\n")))
	return Parsed{Type: kind, Transactions: p.scan(lines, layouts[kind])}
}

// Detect names the statement issuer from lowercased text.
func Detect(lower string) string {
	switch {
	case strings.Contains(lower, "m-pesa"), strings.Contains(lower, "mpesa"):
		return TypeMpesa
	case strings.Contains(lower, "equity"):
		return TypeEquity
	case strings.Contains(lower, "kcb"):
		return TypeKCB
	case strings.Contains(lower, "absa"):
		return TypeAbsa
	}
	return TypeGeneric
}

// Lines splits text into trimmed non-empty lines and drops the "Page" marker with the three lines after it.
func Lines(text string) []string {
	var out []string
	skip := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if line == "Page" {
			skip = 3
			continue
		}
		out = append(out, line)
	}
	return out
}

func (p Parser) noise() Noise {
	if p.Noise != nil {
		return *p.Noise
	}
	return DefaultNoise
}

func (p Parser) scan(lines []string, l layout) []Transaction {
	noise := p.noise()
	inSection := l.startMarker == ""
	var pending []string
	var out []Transaction

	for i := 0; i < len(lines); {
		line := lines[i]
		i++

		if !inSection {
			inSection = line == l.startMarker
			continue
		}
		if noise.match(line) {
			continue
		}
		if !dateRe.MatchString(line) {
			if !amountRe.MatchString(line) {
				pending = append(pending, line)
			}
			continue
		}

		var amounts []decimal.Decimal
		desc := pending
		j := i
		for j < len(lines) && len(amounts) < l.amounts {
			candidate := lines[j]
			if noise.match(candidate) {
				j++
				continue
			}
			if dateRe.MatchString(candidate) {
				break
			}
			if amountRe.MatchString(candidate) {
				amounts = append(amounts, ParseAmount(candidate))
				j++
				continue
			}
			if len(amounts) > 0 {
				break
			}
			desc = append(desc, candidate)
			j++
		}
		if len(amounts) < 2 {
			continue
		}

		date, err := ParseDate(line)
		description := strings.TrimSpace(strings.Join(desc, " "))
		if err == nil && description != "" {
			tx := Transaction{Date: date, Description: description}
			first, last := amounts[0], amounts[len(amounts)-1]
			tx.Amount, tx.Balance = &first, &last
			if l.amounts == 3 && len(amounts) >= 3 {
				debit, credit := amounts[0], amounts[1]
				tx.Debit, tx.Credit = &debit, &credit
			}
			out = append(out, tx)
		}
		pending = nil
		i = j
	}
	return out
}

// ParseAmount strips thousands separators. Callers pass strings already matched by the amount pattern.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate accepts day-first dates with slashes or dashes and two or four digit years.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}
