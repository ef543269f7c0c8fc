package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/budget"
	"github.com/Simonwafula/personal-finance-app/pkg/debt"
)

func createDebtPlanHandler(c *gin.Context) {
	var req struct {
		Strategy               string          `json:"strategy"`
		MonthlyAmountAvailable decimal.Decimal `json:"monthly_amount_available"`
		StartDate              string          `json:"start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan := models.DebtPlan{
		UserID:                 currentUserID(c),
		Strategy:               strings.ToUpper(req.Strategy),
		MonthlyAmountAvailable: req.MonthlyAmountAvailable,
		StartDate:              today(),
	}
	if plan.Strategy == "" {
		plan.Strategy = models.StrategyAvalanche
	}
	if plan.Strategy != models.StrategyAvalanche && plan.Strategy != models.StrategySnowball {
		c.JSON(http.StatusBadRequest, gin.H{"error": "strategy must be AVALANCHE or SNOWBALL"})
		return
	}
	if !plan.MonthlyAmountAvailable.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthly_amount_available must be positive"})
		return
	}
	if req.StartDate != "" {
		d, err := parseDay(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		plan.StartDate = d
	}
	if err := db.Create(&plan).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func listDebtPlansHandler(c *gin.Context) {
	var plans []models.DebtPlan
	if err := db.Where("user_id = ?", currentUserID(c)).Order("id desc").Find(&plans).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// simulatePlan runs the plan against the user's current liabilities.
func simulatePlan(c *gin.Context) (debt.Result, bool) {
	id, ok := idParam(c)
	if !ok {
		return debt.Result{}, false
	}
	userID := currentUserID(c)
	var plan models.DebtPlan
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&plan).Error; err != nil {
		respondError(c, err)
		return debt.Result{}, false
	}
	var liabilities []models.Liability
	if err := db.Where("user_id = ?", userID).Order("id").Find(&liabilities).Error; err != nil {
		respondError(c, err)
		return debt.Result{}, false
	}
	return debt.Simulate(plan, liabilities), true
}

func debtScheduleHandler(c *gin.Context) {
	res, ok := simulatePlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

func debtChartHandler(c *gin.Context) {
	res, ok := simulatePlan(c)
	if !ok {
		return
	}
	if res.Error != "" {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	png, err := debt.RenderChart(res)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func createBudgetHandler(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		PeriodType string `json:"period_type"`
		StartDate  string `json:"start_date" binding:"required"`
		EndDate    string `json:"end_date" binding:"required"`
		Notes      string `json:"notes"`
		Lines      []struct {
			CategoryID    uint            `json:"category" binding:"required"`
			PlannedAmount decimal.Decimal `json:"planned_amount"`
		} `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err1 := parseDay(req.StartDate)
	end, err2 := parseDay(req.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be YYYY-MM-DD with start <= end"})
		return
	}
	userID := currentUserID(c)
	b := models.Budget{
		UserID:     userID,
		Name:       req.Name,
		PeriodType: strings.ToUpper(req.PeriodType),
		StartDate:  start,
		EndDate:    end,
		Notes:      req.Notes,
	}
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(&b).Error; err != nil {
			return err
		}
		for _, l := range req.Lines {
			if l.PlannedAmount.IsNegative() {
				return &badRequest{"planned_amount must not be negative"}
			}
			var n int64
			if err := tx.Model(&models.Category{}).Where("id = ? AND user_id = ?", l.CategoryID, userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return &badRequest{"unknown category " + strconv.FormatUint(uint64(l.CategoryID), 10)}
			}
			line := models.BudgetLine{BudgetID: b.ID, CategoryID: l.CategoryID, PlannedAmount: l.PlannedAmount}
			if err := tx.Omit("Category").Create(&line).Error; err != nil {
				return err
			}
			b.Lines = append(b.Lines, line)
		}
		return nil
	})
	var br *badRequest
	if errors.As(err, &br) {
		c.JSON(http.StatusBadRequest, gin.H{"error": br.msg})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func budgetSummaryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := budget.Summarize(c.Request.Context(), db, currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func listNotificationsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	userID := currentUserID(c)
	items, err := notifications.List(c.Request.Context(), userID, c.Query("unread") == "true", limit)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread, "results": items})
}

func markNotificationReadHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := notifications.MarkRead(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func listActivityHandler(c *gin.Context) {
	f := activity.Filter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"start", &f.From}, {"end", &f.To}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		d, err := parseDay(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": p.name + " must be YYYY-MM-DD"})
			return
		}
		*p.dst = d
	}
	items, err := activityLog.List(c.Request.Context(), currentUserID(c), time.Now(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}
