package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func TestCandidate(t *testing.T) {
	for name, want := range map[string]bool{
		"feb.pdf":         true,
		"march.CSV":       true,
		"scan.jpg":        true,
		".hidden.pdf":     false,
		"feb.pdf~":        false,
		"upload.pdf.part": false,
		"notes.docx":      false,
	} {
		assert.Equal(t, want, Candidate(name), name)
	}
}

const feb = "Salary Payment\n01/02/2024\n5,000.00\n15,000.00\nSupermarket purchase\n02/02/2024\n1,000.00\n14,000.00\n"

func TestScanImportsAndArchives(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "inbox")
	acct := testdb.Account(t, db, u.ID, "Equity")
	logger := common.NewSilentLogger()
	im := statement.NewImporter(db, ledger.NewStore(db, logger), statement.Reader{}, logger)

	dir := t.TempDir()
	processed := filepath.Join(dir, "done")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feb.txt"), []byte(feb), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("nothing\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("x"), 0o644))

	cfg := Config{Dir: dir, ProcessedDir: processed, UserID: u.ID, AccountID: acct.ID, Workers: 2}
	box := New(db, im, cfg, logger)
	require.NoError(t, box.Preload(context.Background()))

	stats, err := box.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Imported: 2, Failed: 1}, stats)

	assert.FileExists(t, filepath.Join(processed, "feb.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "feb.txt"))
	assert.FileExists(t, filepath.Join(dir, "empty.txt"))

	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("account_id = ?", acct.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	// A fresh inbox learns about the earlier import from the database.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feb.txt"), []byte(feb), 0o644))
	again := New(db, im, cfg, logger)
	require.NoError(t, again.Preload(context.Background()))
	stats, err = again.Scan(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Skipped)
	assert.EqualValues(t, 0, stats.Imported)
}

type recorder struct{ calls int }

func (r *recorder) ImportFile(_ context.Context, userID, accountID uint, path string, opts statement.Options) (*models.StatementUpload, *statement.ConfirmResult, error) {
	r.calls++
	return &models.StatementUpload{ID: 1, FileName: filepath.Base(path)}, &statement.ConfirmResult{Parsed: 3, Created: 3, DryRun: opts.DryRun}, nil
}

func TestDryRunLeavesFilesInPlace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))
	rec := &recorder{}
	box := New(nil, rec, Config{Dir: dir, Workers: 1, Options: statement.Options{DryRun: true}}, common.NewSilentLogger())

	stats, err := box.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
	assert.EqualValues(t, 3, stats.Imported)
	assert.FileExists(t, filepath.Join(dir, "a.csv"))
	assert.NoDirExists(t, filepath.Join(dir, "processed"))
}
