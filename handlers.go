package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/budget"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

func setupRoutes(r *gin.Engine) {
	r.Use(gin.Recovery(), requestIDMiddleware(), requestLogMiddleware())

	limiter := newIPLimiter(cfg.Auth.LoginRatePerMinute)
	r.GET("/healthz", healthHandler)
	r.POST("/register", rateLimitMiddleware(limiter), registerHandler)
	r.POST("/login", rateLimitMiddleware(limiter), loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)

	auth := r.Group("")
	auth.Use(jwtAuthMiddleware())
	auth.GET("/me", meHandler)
	auth.POST("/profile", saveProfileHandler)
	auth.GET("/profile", getProfileHandler)

	auth.POST("/transactions", createTransactionHandler)
	auth.GET("/transactions", listTransactionsHandler)
	auth.GET("/transactions/:id", getTransactionHandler)
	auth.PUT("/transactions/:id", updateTransactionHandler)
	auth.PATCH("/transactions/:id", patchTransactionHandler)
	auth.DELETE("/transactions/:id", deleteTransactionHandler)

	auth.POST("/liabilities", createLiabilityHandler)
	auth.GET("/liabilities", listLiabilitiesHandler)
	auth.POST("/savings-goals", createSavingsGoalHandler)
	auth.GET("/savings-goals", listSavingsGoalsHandler)
	auth.POST("/savings-goals/:id/contributions", addContributionHandler)
	auth.POST("/investments", createInvestmentHandler)
	auth.GET("/investments", listInvestmentsHandler)
	auth.GET("/net-worth", netWorthHandler)

	auth.POST("/debt-plans", createDebtPlanHandler)
	auth.GET("/debt-plans", listDebtPlansHandler)
	auth.GET("/debt-plans/:id/schedule", debtScheduleHandler)
	auth.GET("/debt-plans/:id/chart", debtChartHandler)
	auth.POST("/budgets", createBudgetHandler)
	auth.GET("/budgets/:id/summary", budgetSummaryHandler)

	auth.GET("/notifications", listNotificationsHandler)
	auth.POST("/notifications/:id/read", markNotificationReadHandler)
	auth.GET("/activity", listActivityHandler)

	auth.POST("/statements/preview", previewStatementHandler)
	auth.POST("/statements/confirm", confirmStatementHandler)
	auth.GET("/statements/uploads", listUploadsHandler)
}

// respondError maps domain errors onto status codes; anything unexpected is a 500.
func respondError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	var re *statement.RowsError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.As(err, &re):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement rows", "rows": re.Rows})
	case errors.Is(err, statement.ErrUnsupported), errors.Is(err, statement.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, budget.ErrNotFound),
		errors.Is(err, notify.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func healthHandler(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Register(req.Username, req.Password)
	if errors.Is(err, errUserExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully", "id": user.ID})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueAccessToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	refresh, err := createRefreshToken(db, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "refresh_token": refresh})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token.
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, next, err := rotateRefreshToken(req.RefreshToken)
	if errors.Is(err, errInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := issueAccessToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": next})
}

func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := db.Model(&models.RefreshToken{}).Where("token_hash = ?", hashToken(req.RefreshToken)).Update("revoked", true)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       currentUserID(c),
		"username": c.GetString("username"),
		"role":     c.GetString("role"),
	})
}

// saveProfileHandler creates or updates the caller's profile. Email alert flags default to on.
func saveProfileHandler(c *gin.Context) {
	var req struct {
		Name                    string `json:"name" binding:"required"`
		Email                   string `json:"email"`
		Phone                   string `json:"phone"`
		Currency                string `json:"currency"`
		EmailNotifications      bool   `json:"email_notifications"`
		EmailBudgetAlerts       *bool  `json:"email_budget_alerts"`
		EmailRecurringReminders *bool  `json:"email_recurring_reminders"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(c)
	var p models.Profile
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&p).Error; err != nil {
		respondError(c, err)
		return
	}
	p.UserID = userID
	p.Active = true
	p.Name = req.Name
	p.Email = req.Email
	p.Phone = req.Phone
	if req.Currency != "" {
		p.Currency = req.Currency
	} else if p.Currency == "" {
		p.Currency = "KES"
	}
	p.EmailNotifications = req.EmailNotifications
	p.EmailBudgetAlerts = req.EmailBudgetAlerts == nil || *req.EmailBudgetAlerts
	p.EmailRecurringReminders = req.EmailRecurringReminders == nil || *req.EmailRecurringReminders
	if err := db.Save(&p).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID})
}

func getProfileHandler(c *gin.Context) {
	var p models.Profile
	if err := db.Where("user_id = ?", currentUserID(c)).First(&p).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
