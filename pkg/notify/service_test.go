package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("app@example.com", "u@example.com", "Budget\nalert", "line1\nline2"))
	assert.Contains(t, msg, "Subject: Budget alert\r\n")
	assert.Contains(t, msg, "To: u@example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "line1\r\nline2"))
}

func TestNewMailerWithoutRelayLogs(t *testing.T) {
	m := NewMailer(common.MailConfig{}, common.NewSilentLogger())
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), "a@b.c", "s", "b"))
}

func TestDispatchHonoursEmailPreferences(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "carol")
	require.NoError(t, db.Create(&models.Profile{
		UserID: u.ID, Name: "Carol", Email: "carol@example.com", Active: true,
		EmailNotifications: true, EmailBudgetAlerts: true, EmailRecurringReminders: false,
	}).Error)

	mailer := &fakeMailer{}
	svc := NewService(db, mailer, common.NewSilentLogger())
	ctx := context.Background()

	assert.True(t, svc.Dispatch(ctx, Message{UserID: u.ID, Title: "Budget 'Feb': Food reached 90%", Category: models.NotificationCategoryBudget, Level: models.LevelWarning}))
	assert.True(t, svc.Dispatch(ctx, Message{UserID: u.ID, Title: "Upcoming subscription on 2024-03-01", Category: models.NotificationCategoryRecurring}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "carol@example.com|Budget 'Feb': Food reached 90%", mailer.sent[0])

	list, err := svc.List(ctx, u.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	var emailed int
	for _, n := range list {
		if n.EmailSent {
			emailed++
		}
	}
	assert.Equal(t, 1, emailed)

	exists, err := svc.Exists(ctx, u.ID, "Budget 'Feb': Food reached 90%", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDispatchSurvivesMailFailure(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "dave")
	require.NoError(t, db.Create(&models.Profile{UserID: u.ID, Name: "Dave", Email: "d@example.com", Active: true, EmailNotifications: true}).Error)
	svc := NewService(db, &fakeMailer{err: errors.New("relay down")}, common.NewSilentLogger())

	assert.True(t, svc.Dispatch(context.Background(), Message{UserID: u.ID, Title: "hello"}))
	n, err := svc.UnreadCount(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMarkRead(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "erin")
	svc := NewService(db, nil, common.NewSilentLogger())
	ctx := context.Background()
	svc.Dispatch(ctx, Message{UserID: u.ID, Title: "one"})
	svc.Dispatch(ctx, Message{UserID: u.ID, Title: "two"})

	list, err := svc.List(ctx, u.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.MarkRead(ctx, u.ID, list[0].ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, u.ID+1, list[1].ID), ErrNotFound)

	n, err := svc.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
