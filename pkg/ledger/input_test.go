package ledger

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
)

func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string { return &v }
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizeTransferDropsLinks(t *testing.T) {
	in := Input{
		AccountID:         1,
		Kind:              "transfer",
		Date:              time.Date(2024, 3, 5, 14, 30, 0, 0, time.FixedZone("EAT", 3*3600)),
		Amount:            dec("500"),
		TransferAccountID: uintPtr(2),
		LiabilityID:       uintPtr(7),
		SavingsGoalID:     uintPtr(8),
		InvestmentID:      uintPtr(9),
		InvestmentAction:  strPtr("buy"),
	}
	in.normalize()

	assert.Equal(t, models.KindTransfer, in.Kind)
	assert.Nil(t, in.LiabilityID)
	assert.Nil(t, in.SavingsGoalID)
	assert.Nil(t, in.InvestmentID)
	assert.Nil(t, in.InvestmentAction)
	assert.Equal(t, models.SourceManual, in.Source)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), in.Date)
}

func TestNormalizeNonTransferClearsCounterpart(t *testing.T) {
	in := Input{AccountID: 1, Kind: "INCOME", Fee: dec("10"), TransferAccountID: uintPtr(2), InvestmentAction: strPtr(" sell ")}
	in.normalize()

	assert.Nil(t, in.TransferAccountID)
	assert.True(t, in.Fee.IsZero())
	require.NotNil(t, in.InvestmentAction)
	assert.Equal(t, models.ActionSell, *in.InvestmentAction)
}

func TestNormalizeTruncatesDescriptionByCharacter(t *testing.T) {
	in := Input{AccountID: 1, Kind: models.KindExpense, Description: strings.Repeat("x", 254) + "ñandú"}
	in.normalize()

	assert.True(t, utf8.ValidString(in.Description))
	assert.Equal(t, 255, utf8.RuneCountInString(in.Description))
	assert.True(t, strings.HasSuffix(in.Description, "ñ"))
}

func TestValidate(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := func() Input {
		return Input{AccountID: 1, Kind: models.KindExpense, Date: day, Amount: dec("10")}
	}

	tests := []struct {
		name     string
		mutate   func(*Input)
		creating bool
		field    string
	}{
		{"valid expense", func(in *Input) {}, true, ""},
		{"unknown kind", func(in *Input) { in.Kind = "REFUND" }, true, "kind"},
		{"missing account", func(in *Input) { in.AccountID = 0 }, true, "account"},
		{"missing date", func(in *Input) { in.Date = time.Time{} }, true, "date"},
		{"negative amount", func(in *Input) { in.Amount = dec("-1") }, true, "amount"},
		{"negative fee", func(in *Input) { in.Fee = dec("-0.5") }, true, "fee"},
		{"transfer without destination", func(in *Input) { in.Kind = models.KindTransfer }, true, "transfer_account"},
		{"transfer without destination on update", func(in *Input) { in.Kind = models.KindTransfer }, false, ""},
		{"transfer to same account", func(in *Input) {
			in.Kind = models.KindTransfer
			in.TransferAccountID = uintPtr(1)
		}, true, "transfer_account"},
		{"liability on income", func(in *Input) {
			in.Kind = models.KindIncome
			in.LiabilityID = uintPtr(3)
		}, true, "liability"},
		{"action without investment", func(in *Input) { in.InvestmentAction = strPtr(models.ActionBuy) }, true, "investment_action"},
		{"unknown action", func(in *Input) {
			in.InvestmentID = uintPtr(4)
			in.InvestmentAction = strPtr("SPLIT")
		}, true, "investment_action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			err := in.validate(tt.creating)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestApplyInvestmentDelta(t *testing.T) {
	t.Run("units bought at current price", func(t *testing.T) {
		inv := models.Investment{Quantity: dec("10"), CurrentPrice: dec("20"), Status: models.InvestmentActive}
		ApplyInvestmentDelta(&inv, dec("200"))
		assert.True(t, inv.Quantity.Equal(dec("20")), inv.Quantity.String())
		assert.True(t, inv.CurrentPrice.Equal(dec("20")))
	})

	t.Run("lump holding moves price", func(t *testing.T) {
		inv := models.Investment{Quantity: dec("1"), CurrentPrice: dec("1000")}
		ApplyInvestmentDelta(&inv, dec("-250.50"))
		assert.True(t, inv.CurrentPrice.Equal(dec("749.50")))
		ApplyInvestmentDelta(&inv, dec("-5000"))
		assert.True(t, inv.CurrentPrice.IsZero())
	})

	t.Run("selling everything marks sold", func(t *testing.T) {
		inv := models.Investment{Quantity: dec("4"), CurrentPrice: dec("50"), Status: models.InvestmentActive}
		ApplyInvestmentDelta(&inv, dec("-300"))
		assert.True(t, inv.Quantity.IsZero())
		assert.Equal(t, models.InvestmentSold, inv.Status)

		ApplyInvestmentDelta(&inv, dec("100"))
		assert.True(t, inv.Quantity.Equal(dec("2")))
		assert.Equal(t, models.InvestmentActive, inv.Status)
	})

	t.Run("zero price leaves units alone", func(t *testing.T) {
		inv := models.Investment{Quantity: dec("3"), CurrentPrice: decimal.Zero}
		ApplyInvestmentDelta(&inv, dec("100"))
		assert.True(t, inv.Quantity.Equal(dec("3")))
	})
}

func TestSignedAmount(t *testing.T) {
	inv := uintPtr(1)
	tests := []struct {
		kind   string
		action *string
		want   string
	}{
		{models.KindExpense, nil, "200"},
		{models.KindIncome, nil, "-200"},
		{models.KindExpense, strPtr(models.ActionFee), "-200"},
		{models.KindIncome, strPtr(models.ActionDividend), "0"},
		{models.KindIncome, strPtr(models.ActionInterest), "0"},
		{models.KindIncome, strPtr(models.ActionBuy), "200"},
	}
	for _, tt := range tests {
		txn := &models.Transaction{Kind: tt.kind, Amount: dec("200"), InvestmentID: inv, InvestmentAction: tt.action}
		assert.True(t, signedAmount(txn).Equal(dec(tt.want)), "%s/%v", tt.kind, tt.action)
	}
}
