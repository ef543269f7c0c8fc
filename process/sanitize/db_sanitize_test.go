package sanitize

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func TestParseTables(t *testing.T) {
	valid, rejected := ParseTables(" transactions, budgets ,,users;drop table x,1bad")
	assert.Equal(t, []string{"transactions", "budgets"}, valid)
	assert.Equal(t, []string{"users;drop table x", "1bad"}, rejected)
}

func TestRun(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "bob")
	testdb.Account(t, db, u.ID, "Bank")
	ctx := context.Background()

	tables, err := ModelTables(db)
	require.NoError(t, err)
	assert.Contains(t, tables, "transactions")
	assert.Contains(t, tables, "accounts")

	count := func(m any) int64 {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		return n
	}

	var out bytes.Buffer
	got, err := Run(ctx, db, Options{Tables: []string{"accounts", "missing_table"}, DryRun: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts"}, got)
	assert.Contains(t, out.String(), "missing_table not found")
	assert.EqualValues(t, 1, count(&models.Account{}))

	_, err = Run(ctx, db, Options{Tables: []string{"accounts"}}, &out)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(&models.Account{}), "needs --yes")

	_, err = Run(ctx, db, Options{Tables: tables, Yes: true, Reseed: true, AdminPassword: "pw"}, &out)
	require.NoError(t, err)
	assert.Zero(t, count(&models.Account{}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.EqualValues(t, 2, count(&models.Role{}))
	assert.EqualValues(t, 1, count(&models.Profile{}))
}
