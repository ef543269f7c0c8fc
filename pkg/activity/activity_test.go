package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func TestImportAction(t *testing.T) {
	assert.Equal(t, "transaction.import.pdf", ImportAction("pdf"))
	assert.Equal(t, "transaction.import", ImportAction(""))
}

func TestRecordListAndCleanup(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "dora")
	other := testdb.User(t, db, "eve")
	r := NewRecorder(db, common.NewSilentLogger())
	ctx := context.Background()

	require.True(t, r.Record(ctx, Entry{UserID: u.ID, Action: ActionTransactionCreated, EntityType: "transaction", EntityID: "1", Summary: "Created expense 10.00"}))
	require.True(t, r.Record(ctx, Entry{UserID: u.ID, Action: ActionTransactionDeleted, EntityType: "transaction", EntityID: "1", Summary: "Deleted expense 10.00"}))
	require.True(t, r.Record(ctx, Entry{UserID: u.ID, Actor: models.ActorSystem, Action: ImportAction("csv"), Summary: "old import"}))
	require.True(t, r.Record(ctx, Entry{UserID: other.ID, Action: ActionTransactionCreated, Summary: "not yours"}))

	now := time.Now()
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("summary = ?", "old import").
		Update("created_at", now.AddDate(0, 0, -400)).Error)

	all, err := r.List(ctx, u.ID, now, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2, "entries past retention are hidden")
	assert.Equal(t, ActionTransactionDeleted, all[0].Action, "newest first")
	assert.Equal(t, models.ActorUser, all[0].Actor)
	assert.NotNil(t, all[0].Metadata)

	created, err := r.List(ctx, u.ID, now, Filter{Action: ActionTransactionCreated, EntityType: "transaction", EntityID: "1"})
	require.NoError(t, err)
	require.Len(t, created, 1)

	none, err := r.List(ctx, u.ID, now, Filter{To: now.AddDate(0, 0, -2)})
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := r.Cleanup(ctx, now, RetentionDays)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	var left int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&left).Error)
	assert.Equal(t, int64(3), left)
}
