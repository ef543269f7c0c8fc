package statement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ledger"
)

// ConfirmRequest imports previewed rows, possibly edited by the user, into one account.
type ConfirmRequest struct {
	AccountID       uint  `json:"account_id" binding:"required"`
	CategoryID      *uint `json:"category_id"`
	Rows            []Row `json:"rows" binding:"required"`
	AllowDuplicates bool  `json:"allow_duplicates"`
	DryRun          bool  `json:"dry_run"`

	// Format is the source file's format (see FormatOf); it only names the activity entry.
	Format string `json:"-"`
}

type ConfirmResult struct {
	Parsed     int  `json:"parsed"`
	Created    int  `json:"created"`
	Duplicates int  `json:"duplicates"`
	DryRun     bool `json:"dry_run"`
}

// RowError names a row that could not be read.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RowsError rejects a confirmation before anything is written.
type RowsError struct {
	Rows []RowError
}

func (e *RowsError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, fmt.Sprintf("row %d: %s", r.Row, r.Message))
	}
	return "invalid statement rows: " + strings.Join(parts, "; ")
}

// Options tune how a file is previewed before import.
type Options struct {
	OpeningBalance  *decimal.Decimal
	FirstKind       string
	AllowDuplicates bool
	DryRun          bool
}

var errDryRun = errors.New("dry run")

// Importer writes statement rows through the ledger so every side effect applies.
type Importer struct {
	db     *gorm.DB
	store  *ledger.Store
	reader Reader
	logger *common.Logger
	audit  ledger.ActivityRecorder
}

func NewImporter(db *gorm.DB, store *ledger.Store, reader Reader, logger *common.Logger) *Importer {
	return &Importer{db: db, store: store, reader: reader, logger: logger.WithComponent("statement")}
}

// WithActivity records one activity entry per committed import.
func (im *Importer) WithActivity(a ledger.ActivityRecorder) *Importer {
	im.audit = a
	return im
}

type validRow struct {
	date        time.Time
	amount      decimal.Decimal
	kind        string
	description string
}

func validateRows(rows []Row) ([]validRow, error) {
	var bad []RowError
	out := make([]validRow, 0, len(rows))
	for i, r := range rows {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
		if err != nil {
			if date, err = ParseDate(r.Date); err != nil {
				bad = append(bad, RowError{Row: i + 1, Message: "invalid date"})
				continue
			}
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(r.Amount), ",", ""))
		if err != nil || amount.IsNegative() {
			bad = append(bad, RowError{Row: i + 1, Message: "invalid amount"})
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(r.Kind))
		if kind != KindIncome && kind != KindExpense {
			bad = append(bad, RowError{Row: i + 1, Message: "kind must be INCOME or EXPENSE"})
			continue
		}
		desc := common.Truncate(strings.TrimSpace(r.Description), 255)
		out = append(out, validRow{date: date, amount: amount.Round(2), kind: kind, description: desc})
	}
	if len(bad) > 0 {
		return nil, &RowsError{Rows: bad}
	}
	return out, nil
}

// Confirm validates every row first, then creates the non-duplicate rows in one
// database transaction. A dry run reports the same counts and writes nothing.
func (im *Importer) Confirm(ctx context.Context, userID uint, req ConfirmRequest) (*ConfirmResult, error) {
	rows, err := validateRows(req.Rows)
	if err != nil {
		return nil, err
	}
	res := &ConfirmResult{Parsed: len(rows), DryRun: req.DryRun}

	err = im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", req.AccountID, userID).First(&acct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ledger.ValidationError{Field: "account", Message: "not found"}
		}
		if err != nil {
			return err
		}

		store := im.store.Within(tx)
		for _, r := range rows {
			if !req.AllowDuplicates {
				var n int64
				err := tx.Model(&models.Transaction{}).
					Where("user_id = ? AND account_id = ? AND date = ? AND amount = ? AND kind = ? AND description = ?",
						userID, req.AccountID, r.date.Format("2006-01-02"), r.amount, r.kind, r.description).
					Count(&n).Error
				if err != nil {
					return err
				}
				if n > 0 {
					res.Duplicates++
					continue
				}
			}
			_, err := store.Create(ctx, userID, ledger.Input{
				AccountID:   req.AccountID,
				Date:        r.date,
				Amount:      r.amount,
				Kind:        r.kind,
				CategoryID:  req.CategoryID,
				Description: r.description,
				Source:      models.SourceImport,
			})
			if err != nil {
				return err
			}
			res.Created++
		}
		if req.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}
	im.logger.Info().Uint("user_id", userID).Uint("account_id", req.AccountID).
		Int("created", res.Created).Int("duplicates", res.Duplicates).Bool("dry_run", req.DryRun).
		Msg("Statement import confirmed")
	if im.audit != nil && !req.DryRun {
		im.audit.Record(ctx, activity.Entry{
			UserID:     userID,
			Action:     activity.ImportAction(req.Format),
			EntityType: "account",
			EntityID:   strconv.FormatUint(uint64(req.AccountID), 10),
			Summary:    fmt.Sprintf("Imported %d transactions (%d duplicates skipped)", res.Created, res.Duplicates),
			Metadata: map[string]any{
				"account_id": req.AccountID,
				"parsed":     res.Parsed,
				"created":    res.Created,
				"duplicates": res.Duplicates,
			},
		})
	}
	return res, nil
}

// PreviewFile reads and previews a statement without writing transactions.
func (im *Importer) PreviewFile(path string, opts Options) (Parsed, []Row, Summary, error) {
	parsed, err := im.reader.Read(path)
	if err != nil {
		return Parsed{}, nil, Summary{}, err
	}
	rows, sum := Preview(parsed.Transactions, opts.OpeningBalance, opts.FirstKind)
	return parsed, rows, sum, nil
}

// ImportFile previews and confirms a file in one go, tracking progress on a StatementUpload
// keyed by the file's base name.
func (im *Importer) ImportFile(ctx context.Context, userID, accountID uint, path string, opts Options) (*models.StatementUpload, *ConfirmResult, error) {
	upload := &models.StatementUpload{
		UserID:    userID,
		AccountID: &accountID,
		FileName:  filepath.Base(path),
		StorePath: path,
		Status:    models.UploadPending,
	}
	err := im.db.WithContext(ctx).
		Where(models.StatementUpload{UserID: userID, FileName: upload.FileName}).
		Assign(models.StatementUpload{AccountID: &accountID, StorePath: path, Status: models.UploadPending}).
		FirstOrCreate(upload).Error
	if err != nil {
		return nil, nil, err
	}

	fail := func(cause error) (*models.StatementUpload, *ConfirmResult, error) {
		reason := common.Truncate(cause.Error(), 255)
		upload.Status = models.UploadFailed
		upload.FailedReason = reason
		if err := im.db.WithContext(ctx).Save(upload).Error; err != nil {
			im.logger.Error().Err(err).Uint("upload_id", upload.ID).Msg("Failed to record upload failure")
		}
		return upload, nil, cause
	}

	parsed, rows, _, err := im.PreviewFile(path, opts)
	if err != nil {
		return fail(err)
	}
	upload.StatementType = parsed.Type
	upload.RowCount = len(rows)
	upload.Status = models.UploadParsed
	if err := im.db.WithContext(ctx).Save(upload).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return fail(ErrEmpty)
	}

	res, err := im.Confirm(ctx, userID, ConfirmRequest{
		AccountID:       accountID,
		Rows:            rows,
		AllowDuplicates: opts.AllowDuplicates,
		DryRun:          opts.DryRun,
		Format:          FormatOf(path),
	})
	if err != nil {
		return fail(err)
	}
	if !opts.DryRun {
		upload.Status = models.UploadImported
		upload.ImportedCount = res.Created
		upload.FailedReason = ""
		if err := im.db.WithContext(ctx).Save(upload).Error; err != nil {
			return nil, nil, err
		}
	}
	return upload, res, nil
}
