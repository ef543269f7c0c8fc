// Package activity keeps a per-user audit trail of ledger writes and statement imports.
package activity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

// RetentionDays is how long entries are listed and kept.
const RetentionDays = 365

const (
	ActionTransactionCreated = "transaction.created"
	ActionTransactionUpdated = "transaction.updated"
	ActionTransactionDeleted = "transaction.deleted"
	ActionImport             = "transaction.import"
)

// ImportAction names an import by the statement format, e.g. transaction.import.pdf.
func ImportAction(format string) string {
	if format == "" {
		return ActionImport
	}
	return ActionImport + "." + format
}

// Entry is an activity to record.
type Entry struct {
	UserID     uint
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Summary    string
	Metadata   map[string]any
}

type Recorder struct {
	db     *gorm.DB
	logger *common.Logger
}

func NewRecorder(db *gorm.DB, logger *common.Logger) *Recorder {
	return &Recorder{db: db, logger: logger.WithComponent("activity")}
}

// Record stores e and reports whether it was stored. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, e Entry) bool {
	actor := e.Actor
	if actor == "" {
		actor = models.ActorUser
	}
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	row := &models.ActivityLog{
		UserID:     e.UserID,
		Actor:      actor,
		Action:     common.Truncate(e.Action, 50),
		EntityType: common.Truncate(e.EntityType, 50),
		EntityID:   common.Truncate(e.EntityID, 64),
		Summary:    common.Truncate(e.Summary, 255),
		Metadata:   meta,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Warn().Err(err).Uint("user_id", e.UserID).Str("action", e.Action).Msg("Activity not recorded")
		return false
	}
	return true
}

// Filter narrows List. Zero values are ignored; To is inclusive of its whole day.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	From, To   time.Time
	Limit      int
	Offset     int
}

// List returns the user's entries inside the retention window, newest first.
func (r *Recorder) List(ctx context.Context, userID uint, now time.Time, f Filter) ([]models.ActivityLog, error) {
	since := now.AddDate(0, 0, -RetentionDays)
	if f.From.After(since) {
		since = f.From
	}
	q := r.db.WithContext(ctx).Where("user_id = ? AND created_at >= ?", userID, since)
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To.AddDate(0, 0, 1))
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []models.ActivityLog
	err := q.Order("created_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

// Cleanup deletes entries older than days before now and returns how many went.
func (r *Recorder) Cleanup(ctx context.Context, now time.Time, days int) (int, error) {
	if days <= 0 {
		days = RetentionDays
	}
	res := r.db.WithContext(ctx).Where("created_at < ?", now.AddDate(0, 0, -days)).Delete(&models.ActivityLog{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.logger.Info().Int64("deleted", res.RowsAffected).Int("days", days).Msg("Activity logs cleaned up")
	return int(res.RowsAffected), nil
}
