package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
)

// opt records whether a JSON field was present, so PATCH can tell "absent" from "null".
type opt[T any] struct {
	Set   bool
	Value *T
}

func (o *opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type transactionRequest struct {
	Account          opt[uint]            `json:"account"`
	Date             opt[string]          `json:"date"`
	Amount           opt[decimal.Decimal] `json:"amount"`
	Fee              opt[decimal.Decimal] `json:"fee"`
	Kind             opt[string]          `json:"kind"`
	Category         opt[uint]            `json:"category"`
	Description      opt[string]          `json:"description"`
	Tags             opt[string]          `json:"tags"`
	IsRecurring      opt[bool]            `json:"is_recurring"`
	RecurringRule    opt[map[string]any]  `json:"recurring_rule"`
	SavingsGoal      opt[uint]            `json:"savings_goal"`
	Liability        opt[uint]            `json:"liability"`
	Investment       opt[uint]            `json:"investment"`
	InvestmentAction opt[string]          `json:"investment_action"`
	TransferAccount  opt[uint]            `json:"transfer_account"`
}

// overlay copies every present field onto in.
func (r transactionRequest) overlay(in *ledger.Input) *ledger.ValidationError {
	if r.Account.Set {
		in.AccountID = deref(r.Account.Value)
	}
	if r.Date.Set {
		in.Date = time.Time{}
		if r.Date.Value != nil {
			d, err := time.Parse("2006-01-02", strings.TrimSpace(*r.Date.Value))
			if err != nil {
				return &ledger.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
			}
			in.Date = d
		}
	}
	if r.Amount.Set {
		in.Amount = deref(r.Amount.Value)
	}
	if r.Fee.Set {
		in.Fee = deref(r.Fee.Value)
	}
	if r.Kind.Set {
		in.Kind = deref(r.Kind.Value)
	}
	if r.Category.Set {
		in.CategoryID = r.Category.Value
	}
	if r.Description.Set {
		in.Description = deref(r.Description.Value)
	}
	if r.Tags.Set {
		in.Tags = deref(r.Tags.Value)
	}
	if r.IsRecurring.Set {
		in.IsRecurring = deref(r.IsRecurring.Value)
	}
	if r.RecurringRule.Set {
		in.RecurringRule = deref(r.RecurringRule.Value)
	}
	if r.SavingsGoal.Set {
		in.SavingsGoalID = r.SavingsGoal.Value
	}
	if r.Liability.Set {
		in.LiabilityID = r.Liability.Value
	}
	if r.Investment.Set {
		in.InvestmentID = r.Investment.Value
	}
	if r.InvestmentAction.Set {
		in.InvestmentAction = r.InvestmentAction.Value
	}
	if r.TransferAccount.Set {
		in.TransferAccountID = r.TransferAccount.Value
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func bindTransaction(c *gin.Context, in *ledger.Input) bool {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if ve := req.overlay(in); ve != nil {
		respondError(c, ve)
		return false
	}
	return true
}

func createTransactionHandler(c *gin.Context) {
	var in ledger.Input
	if !bindTransaction(c, &in) {
		return
	}
	t, err := store.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func listTransactionsHandler(c *gin.Context) {
	var f ledger.Filter
	if v := c.Query("account"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
			return
		}
		f.AccountID = uint(id)
	}
	f.Kind = strings.ToUpper(c.Query("kind"))
	for _, q := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if v := c.Query(q.name); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + q.name + " date"})
				return
			}
			*q.dst = d
		}
	}
	if v := c.Query("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	rows, err := store.List(c.Request.Context(), currentUserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func getTransactionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := store.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// updateTransactionHandler replaces every field; absent fields become empty.
func updateTransactionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in ledger.Input
	if !bindTransaction(c, &in) {
		return
	}
	t, err := store.Update(c.Request.Context(), currentUserID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// patchTransactionHandler merges the body onto the current state and then runs a full update.
func patchTransactionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)
	cur, err := store.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	in := ledger.InputFromTransaction(*cur)
	if !bindTransaction(c, &in) {
		return
	}
	t, err := store.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func deleteTransactionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := store.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
