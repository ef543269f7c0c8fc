// Package reprocess retries statement uploads that failed to import, for example after the
// OCR setup or the parser improved.
package reprocess

import (
	"context"
	"os"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

type Importer interface {
	ImportFile(ctx context.Context, userID, accountID uint, path string, opts statement.Options) (*models.StatementUpload, *statement.ConfirmResult, error)
}

type Options struct {
	UserID     uint // zero means every user
	ImagesOnly bool
	Limit      int
	DryRun     bool
}

type Result struct {
	Retried     int
	Recovered   int
	StillFailed int
	// Skipped uploads have no target account or their file is gone.
	Skipped int
	Created int
}

// Run re-imports FAILED uploads that know their target account.
func Run(ctx context.Context, db *gorm.DB, imp Importer, opts Options, logger *common.Logger) (Result, error) {
	log := logger.WithComponent("reprocess")
	q := db.WithContext(ctx).Where("status = ?", models.UploadFailed).Order("id")
	if opts.UserID != 0 {
		q = q.Where("user_id = ?", opts.UserID)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	var uploads []models.StatementUpload
	if err := q.Find(&uploads).Error; err != nil {
		return Result{}, err
	}

	var res Result
	for _, u := range uploads {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if opts.ImagesOnly && !statement.IsImage(u.FileName) {
			continue
		}
		if u.AccountID == nil {
			res.Skipped++
			log.Debug().Uint("upload_id", u.ID).Msg("No target account; needs an interactive import")
			continue
		}
		if _, err := os.Stat(u.StorePath); err != nil {
			res.Skipped++
			log.Warn().Uint("upload_id", u.ID).Str("path", u.StorePath).Msg("Stored file missing")
			continue
		}
		res.Retried++
		_, cr, err := imp.ImportFile(ctx, u.UserID, *u.AccountID, u.StorePath, statement.Options{DryRun: opts.DryRun})
		if err != nil {
			res.StillFailed++
			log.Info().Err(err).Uint("upload_id", u.ID).Str("file", u.FileName).Msg("Still failing")
			continue
		}
		res.Recovered++
		res.Created += cr.Created
		log.Info().Uint("upload_id", u.ID).Str("file", u.FileName).Int("created", cr.Created).Bool("dry_run", opts.DryRun).Msg("Upload recovered")
	}
	return res, nil
}
