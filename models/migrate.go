package models

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Role{}, &User{}, &Profile{}, &RefreshToken{},
		&Account{}, &Category{},
		&Liability{}, &SavingsGoal{}, &Investment{},
		&Transaction{}, &RecurringTransaction{}, &GoalContribution{},
		&Asset{}, &NetWorthSnapshot{}, &DebtPlan{},
		&Budget{}, &BudgetLine{}, &Notification{}, &StatementUpload{},
		&ActivityLog{},
	}
}
