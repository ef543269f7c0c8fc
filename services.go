package main

import (
	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/app"
	"github.com/Simonwafula/personal-finance-app/pkg/budget"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/notify"
	"github.com/Simonwafula/personal-finance-app/pkg/recurring"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// Services shared by the handlers and the scheduler; set by initServices after initDB.
var (
	activityLog    *activity.Recorder
	notifications  *notify.Service
	budgetNotifier *budget.Notifier
	store          *ledger.Store
	importer       *statement.Importer
	materializer   *recurring.Materializer
	reminders      *recurring.Reminders
)

func initServices() {
	s := app.NewServices(db, cfg, logger)
	activityLog = s.Activity
	notifications = s.Notifications
	budgetNotifier = s.Budget
	store = s.Store
	importer = s.Importer
	materializer = s.Materializer
	reminders = s.Reminders
}
