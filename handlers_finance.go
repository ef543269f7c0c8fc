package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/wealth"
)

func parseDay(v string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(v))
}

func createLiabilityHandler(c *gin.Context) {
	var req struct {
		Name             string          `json:"name" binding:"required"`
		LiabilityType    string          `json:"liability_type"`
		PrincipalBalance decimal.Decimal `json:"principal_balance"`
		InterestRate     decimal.Decimal `json:"interest_rate"`
		MinimumPayment   decimal.Decimal `json:"minimum_payment"`
		TenureMonths     *int            `json:"tenure_months"`
		DueDayOfMonth    *int            `json:"due_day_of_month"`
		LinkedAccountID  *uint           `json:"linked_account"`
		Notes            string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PrincipalBalance.IsNegative() || req.InterestRate.IsNegative() || req.MinimumPayment.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amounts must not be negative"})
		return
	}
	l := models.Liability{
		UserID:           currentUserID(c),
		Name:             req.Name,
		LiabilityType:    strings.ToUpper(req.LiabilityType),
		PrincipalBalance: req.PrincipalBalance,
		InterestRate:     req.InterestRate,
		MinimumPayment:   req.MinimumPayment,
		TenureMonths:     req.TenureMonths,
		DueDayOfMonth:    req.DueDayOfMonth,
		LinkedAccountID:  req.LinkedAccountID,
		Notes:            req.Notes,
	}
	if err := db.Create(&l).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func listLiabilitiesHandler(c *gin.Context) {
	var out []models.Liability
	if err := db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&out).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type goalView struct {
	models.SavingsGoal
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
}

func createSavingsGoalHandler(c *gin.Context) {
	var req struct {
		Name            string          `json:"name" binding:"required"`
		TargetAmount    decimal.Decimal `json:"target_amount"`
		TargetDate      string          `json:"target_date"`
		LinkedAccountID *uint           `json:"linked_account"`
		Description     string          `json:"description"`
		Emoji           string          `json:"emoji"`
		InterestRate    decimal.Decimal `json:"interest_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.TargetAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_amount must be positive"})
		return
	}
	g := models.SavingsGoal{
		UserID:          currentUserID(c),
		Name:            req.Name,
		TargetAmount:    req.TargetAmount,
		LinkedAccountID: req.LinkedAccountID,
		Description:     req.Description,
		Emoji:           req.Emoji,
		InterestRate:    req.InterestRate,
	}
	if req.TargetDate != "" {
		d, err := parseDay(req.TargetDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_date must be YYYY-MM-DD"})
			return
		}
		g.TargetDate = &d
	}
	if err := db.Create(&g).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goalView{g, g.ProgressPercentage(), g.RemainingAmount()})
}

func listSavingsGoalsHandler(c *gin.Context) {
	var goals []models.SavingsGoal
	if err := db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&goals).Error; err != nil {
		respondError(c, err)
		return
	}
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalView{g, g.ProgressPercentage(), g.RemainingAmount()})
	}
	c.JSON(http.StatusOK, out)
}

func addContributionHandler(c *gin.Context) {
	goalID, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
		Notes  string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date := today()
	if req.Date != "" {
		d, err := parseDay(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = d
	}
	var contrib *models.GoalContribution
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		contrib, err = ledger.AddManualContribution(tx, currentUserID(c), goalID, req.Amount, date, req.Notes)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contrib)
}

type investmentView struct {
	models.Investment
	TotalInvested      decimal.Decimal `json:"total_invested"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	GainLoss           decimal.Decimal `json:"gain_loss"`
	GainLossPercentage decimal.Decimal `json:"gain_loss_percentage"`
}

func viewInvestment(i models.Investment) investmentView {
	return investmentView{i, i.TotalInvested(), i.CurrentValue(), i.GainLoss(), i.GainLossPercentage()}
}

// createInvestmentHandler stores the holding and mirrors it as a net-worth asset in one transaction.
func createInvestmentHandler(c *gin.Context) {
	var req struct {
		Name           string           `json:"name" binding:"required"`
		Symbol         string           `json:"symbol"`
		InvestmentType string           `json:"investment_type"`
		PurchaseDate   string           `json:"purchase_date"`
		PurchasePrice  decimal.Decimal  `json:"purchase_price"`
		Quantity       *decimal.Decimal `json:"quantity"`
		PurchaseFees   decimal.Decimal  `json:"purchase_fees"`
		CurrentPrice   *decimal.Decimal `json:"current_price"`
		InterestRate   decimal.Decimal  `json:"interest_rate"`
		Platform       string           `json:"platform"`
		Notes          string           `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv := models.Investment{
		UserID:         currentUserID(c),
		Name:           req.Name,
		Symbol:         req.Symbol,
		InvestmentType: strings.ToUpper(req.InvestmentType),
		PurchaseDate:   today(),
		PurchasePrice:  req.PurchasePrice,
		Quantity:       decimal.NewFromInt(1),
		PurchaseFees:   req.PurchaseFees,
		CurrentPrice:   req.PurchasePrice,
		InterestRate:   req.InterestRate,
		Platform:       req.Platform,
		Notes:          req.Notes,
		Status:         models.InvestmentActive,
	}
	if inv.InvestmentType == "" {
		inv.InvestmentType = "OTHER"
	}
	if req.Quantity != nil {
		inv.Quantity = *req.Quantity
	}
	if req.CurrentPrice != nil {
		inv.CurrentPrice = *req.CurrentPrice
	}
	if req.PurchaseDate != "" {
		d, err := parseDay(req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchase_date must be YYYY-MM-DD"})
			return
		}
		inv.PurchaseDate = d
	}
	if !inv.Quantity.IsPositive() || inv.PurchasePrice.IsNegative() || inv.CurrentPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive and prices not negative"})
		return
	}
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		return wealth.SyncInvestmentAsset(tx, &inv)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewInvestment(inv))
}

func listInvestmentsHandler(c *gin.Context) {
	var invs []models.Investment
	if err := db.Where("user_id = ?", currentUserID(c)).Order("id").Find(&invs).Error; err != nil {
		respondError(c, err)
		return
	}
	out := make([]investmentView, 0, len(invs))
	for _, i := range invs {
		out = append(out, viewInvestment(i))
	}
	c.JSON(http.StatusOK, out)
}

func netWorthHandler(c *gin.Context) {
	nw, err := wealth.Compute(c.Request.Context(), db, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nw)
}
