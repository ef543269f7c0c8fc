package statement

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
	"github.com/Simonwafula/personal-finance-app/pkg/testdb"
)

func TestValidateRowsRejectsBadInput(t *testing.T) {
	_, err := validateRows([]Row{
		{Date: "2024-01-01", Amount: "10.00", Kind: "INCOME", Description: "ok"},
		{Date: "yesterday", Amount: "10.00", Kind: "INCOME"},
		{Date: "2024-01-01", Amount: "ten", Kind: "EXPENSE"},
		{Date: "2024-01-01", Amount: "1", Kind: "TRANSFER"},
	})
	var rowsErr *RowsError
	require.ErrorAs(t, err, &rowsErr)
	require.Len(t, rowsErr.Rows, 3)
	assert.Equal(t, 2, rowsErr.Rows[0].Row)
	assert.Equal(t, "invalid amount", rowsErr.Rows[1].Message)
}

func TestValidateRowsTruncatesByCharacter(t *testing.T) {
	rows, err := validateRows([]Row{{Date: "2024-01-01", Amount: "1", Kind: "EXPENSE", Description: strings.Repeat("€", 300)}})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(rows[0].description))
	assert.Equal(t, 255, utf8.RuneCountInString(rows[0].description))
}

func TestReaderFormats(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Salary\n01/02/2024\n5,000.00\n15,000.00\n"), 0o644))

	parsed, err := Reader{}.Read(txt)
	require.NoError(t, err)
	assert.Len(t, parsed.Transactions, 1)

	_, err = Reader{}.Read(filepath.Join(dir, "scan.png"))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Reader{}.Read(filepath.Join(dir, "statement.docx"))
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.True(t, Supported("a.PDF"))
	assert.True(t, IsImage("b.jpeg"))
	assert.False(t, Supported("c.xlsx"))
}

type stubOCR struct{ text string }

func (s stubOCR) ExtractText(string) (string, error) { return s.text, nil }

func TestReaderUsesOCRForImages(t *testing.T) {
	r := Reader{OCR: stubOCR{text: "Rent\n01/03/2024\n800.00\n200.00"}}
	parsed, err := r.Read("photo.jpg")
	require.NoError(t, err)
	require.Len(t, parsed.Transactions, 1)
	assert.Equal(t, "Rent", parsed.Transactions[0].Description)
}

func newImporter(t *testing.T) (*Importer, models.User, models.Account) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "importer")
	acct := testdb.Account(t, db, u.ID, "Equity")
	logger := common.NewSilentLogger()
	return NewImporter(db, ledger.NewStore(db, logger), Reader{}, logger), u, acct
}

func TestConfirmSkipsDuplicatesAndSupportsDryRun(t *testing.T) {
	im, u, acct := newImporter(t)
	ctx := context.Background()
	rows := []Row{
		{Date: "2024-02-01", Amount: "5000.00", Kind: "INCOME", Description: "Salary"},
		{Date: "2024-02-02", Amount: "120.00", Kind: "expense", Description: "Airtime"},
	}

	dry, err := im.Confirm(ctx, u.ID, ConfirmRequest{AccountID: acct.ID, Rows: rows, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, dry.Created)
	var n int64
	require.NoError(t, im.db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)

	res, err := im.Confirm(ctx, u.ID, ConfirmRequest{AccountID: acct.ID, Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	again, err := im.Confirm(ctx, u.ID, ConfirmRequest{AccountID: acct.ID, Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Duplicates)

	forced, err := im.Confirm(ctx, u.ID, ConfirmRequest{AccountID: acct.ID, Rows: rows[:1], AllowDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, 1, forced.Created)

	var txns []models.Transaction
	require.NoError(t, im.db.Order("id").Find(&txns).Error)
	require.Len(t, txns, 3)
	assert.Equal(t, models.SourceImport, txns[0].Source)
	assert.Equal(t, models.KindExpense, txns[1].Kind)
}

func TestConfirmRejectsForeignAccount(t *testing.T) {
	im, _, acct := newImporter(t)
	other := testdb.User(t, im.db, "other")
	_, err := im.Confirm(context.Background(), other.ID, ConfirmRequest{
		AccountID: acct.ID,
		Rows:      []Row{{Date: "2024-02-01", Amount: "1.00", Kind: "INCOME", Description: "x"}},
	})
	assert.True(t, ledger.IsValidation(err))
}

func TestImportFileTracksUpload(t *testing.T) {
	im, u, acct := newImporter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "feb.txt")
	require.NoError(t, os.WriteFile(path, []byte("Salary Payment\n01/02/2024\n5,000.00\n15,000.00\nSupermarket purchase\n02/02/2024\n1,000.00\n14,000.00\n"), 0o644))

	upload, res, err := im.ImportFile(context.Background(), u.ID, acct.ID, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, models.UploadImported, upload.Status)
	assert.Equal(t, 2, upload.RowCount)
	assert.Equal(t, 2, upload.ImportedCount)
	assert.Equal(t, TypeGeneric, upload.StatementType)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("nothing here\n"), 0o644))
	upload, _, err = im.ImportFile(context.Background(), u.ID, acct.ID, empty, Options{})
	require.Error(t, err)
	assert.Equal(t, models.UploadFailed, upload.Status)
	assert.NotEmpty(t, upload.FailedReason)
}

func TestImportRecordsOneActivityEntry(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.User(t, db, "fay")
	acct := testdb.Account(t, db, u.ID, "Bank")
	logger := common.NewSilentLogger()
	rec := activity.NewRecorder(db, logger)
	store := ledger.NewStore(db, logger, ledger.WithActivity(rec))
	im := NewImporter(db, store, Reader{}, logger).WithActivity(rec)

	path := filepath.Join(t.TempDir(), "mar.txt")
	require.NoError(t, os.WriteFile(path, []byte("Salary Payment\n01/03/2024\n5,000.00\n15,000.00\nSupermarket purchase\n02/03/2024\n1,000.00\n14,000.00\n"), 0o644))

	_, _, err := im.ImportFile(context.Background(), u.ID, acct.ID, path, Options{DryRun: true})
	require.NoError(t, err)
	_, res, err := im.ImportFile(context.Background(), u.ID, acct.ID, path, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Created)

	var logs []models.ActivityLog
	require.NoError(t, db.Where("user_id = ?", u.ID).Find(&logs).Error)
	require.Len(t, logs, 1, "rows written inside the import are not logged one by one")
	assert.Equal(t, "transaction.import.text", logs[0].Action)
	assert.Equal(t, "account", logs[0].EntityType)
	assert.Equal(t, "Imported 2 transactions (0 duplicates skipped)", logs[0].Summary)
}
