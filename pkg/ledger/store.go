// Package ledger owns the transaction write path: validation, transfer pairing and
// synchronisation of liabilities, savings goals and investments inside one database transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/activity"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

// Synchronizer keeps one kind of linked aggregate consistent with a transaction's before/after state.
// A nil before means creation, a nil after means deletion.
type Synchronizer interface {
	Name() string
	Sync(tx *gorm.DB, userID uint, before, after *models.Transaction) error
}

// Notifier is told about committed writes. The result is informational only.
type Notifier interface {
	TransactionCommitted(ctx context.Context, userID uint, before, after *models.Transaction) bool
}

// ActivityRecorder keeps the audit trail of committed writes.
type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry) bool
}

// Store is the ledger write boundary.
type Store struct {
	db        *gorm.DB
	logger    *common.Logger
	transfers *TransferManager
	syncers   []Synchronizer
	notifier  Notifier
	audit     ActivityRecorder
}

// Option customises a Store.
type Option func(*Store)

// WithNotifier registers the post-commit notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithActivity records every committed create, update and delete.
func WithActivity(a ActivityRecorder) Option {
	return func(s *Store) { s.audit = a }
}

// WithSynchronizers replaces the default synchronizer chain.
func WithSynchronizers(syncers ...Synchronizer) Option {
	return func(s *Store) { s.syncers = syncers }
}

// NewStore wires the default pipeline: liability, savings, investment.
func NewStore(db *gorm.DB, logger *common.Logger, opts ...Option) *Store {
	s := &Store{
		db:        db,
		logger:    logger.WithComponent("ledger"),
		transfers: &TransferManager{},
	}
	s.syncers = []Synchronizer{
		NewLiabilitySynchronizer(),
		NewSavingsSynchronizer(),
		NewInvestmentSynchronizer(s.logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Within returns a Store writing through tx, so several ledger writes share one outer
// transaction. The copy has no notifier or activity recorder: nothing it writes is committed
// until the caller commits.
func (s *Store) Within(tx *gorm.DB) *Store {
	c := *s
	c.db = tx
	c.notifier = nil
	c.audit = nil
	return &c
}

// write carries state between pipeline steps.
type write struct {
	tx     *gorm.DB
	userID uint
	in     *Input
	id     uint
	before *models.Transaction
	after  *models.Transaction
}

type step func(*Store, *write) error

var (
	createSteps = []step{validateStep, transferStep, synchronizeStep}
	updateSteps = []step{lockCurrentStep, validateStep, transferStep, synchronizeStep}
	deleteSteps = []step{lockCurrentStep, removeStep}
)

func (s *Store) run(ctx context.Context, w *write, steps []step) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w.tx = tx
		for _, st := range steps {
			if err := st(s, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Create writes a new transaction; for a transfer the OUT leg is returned.
func (s *Store) Create(ctx context.Context, userID uint, in Input) (*models.Transaction, error) {
	w := &write{userID: userID, in: &in}
	if err := s.run(ctx, w, createSteps); err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", userID).Uint("id", w.after.ID).Str("kind", w.after.Kind).Msg("Transaction created")
	s.record(ctx, userID, activity.ActionTransactionCreated, "Created", w.after)
	s.notify(ctx, userID, nil, w.after)
	return w.after, nil
}

// Update replaces the fields of transaction id. Either leg of a transfer may be edited.
func (s *Store) Update(ctx context.Context, userID, id uint, in Input) (*models.Transaction, error) {
	w := &write{userID: userID, in: &in, id: id}
	if err := s.run(ctx, w, updateSteps); err != nil {
		return nil, err
	}
	s.logger.Info().Uint("user_id", userID).Uint("id", id).Str("kind", w.after.Kind).Msg("Transaction updated")
	s.record(ctx, userID, activity.ActionTransactionUpdated, "Updated", w.after)
	s.notify(ctx, userID, w.before, w.after)
	return w.after, nil
}

// Delete removes a transaction, or both legs when it belongs to a transfer.
func (s *Store) Delete(ctx context.Context, userID, id uint) error {
	w := &write{userID: userID, id: id}
	if err := s.run(ctx, w, deleteSteps); err != nil {
		return err
	}
	s.logger.Info().Uint("user_id", userID).Uint("id", id).Msg("Transaction deleted")
	s.record(ctx, userID, activity.ActionTransactionDeleted, "Deleted", w.before)
	return nil
}

// Get loads one transaction owned by userID.
func (s *Store) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Filter narrows List. Zero values are ignored.
type Filter struct {
	AccountID uint
	Kind      string
	From, To  time.Time
	Limit     int
}

// List returns the user's transactions, newest first.
func (s *Store) List(ctx context.Context, userID uint, f Filter) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.AccountID != 0 {
		q = q.Where("account_id = ?", f.AccountID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var out []models.Transaction
	err := q.Order("date desc, created_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) notify(ctx context.Context, userID uint, before, after *models.Transaction) {
	if s.notifier == nil {
		return
	}
	if !s.notifier.TransactionCommitted(ctx, userID, before, after) {
		s.logger.Debug().Uint("user_id", userID).Msg("no notification raised")
	}
}

func (s *Store) record(ctx context.Context, userID uint, action, verb string, t *models.Transaction) {
	if s.audit == nil {
		return
	}
	amount := t.Amount.StringFixed(2)
	summary := fmt.Sprintf("%s %s %s", verb, strings.ToLower(t.Kind), amount)
	if t.Description != "" {
		summary += ": " + t.Description
	}
	meta := map[string]any{
		"kind":       t.Kind,
		"amount":     amount,
		"account_id": t.AccountID,
		"date":       t.Date.Format("2006-01-02"),
	}
	if t.TransferGroup != nil {
		meta["transfer_group"] = t.TransferGroup.String()
	}
	actor := models.ActorUser
	if t.Source == models.SourceRecurring {
		actor = models.ActorSystem
	}
	s.audit.Record(ctx, activity.Entry{
		UserID:     userID,
		Actor:      actor,
		Action:     action,
		EntityType: "transaction",
		EntityID:   strconv.FormatUint(uint64(t.ID), 10),
		Summary:    summary,
		Metadata:   meta,
	})
}

func lockCurrentStep(s *Store, w *write) error {
	var cur models.Transaction
	err := w.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", w.id, w.userID).First(&cur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	w.before = &cur
	return nil
}

func validateStep(s *Store, w *write) error {
	w.in.normalize()
	if err := w.in.validate(w.before == nil); err != nil {
		return err
	}
	return w.in.checkOwnership(w.tx, w.userID)
}

func transferStep(s *Store, w *write) error {
	if w.before == nil {
		after, err := s.transfers.Create(w.tx, w.userID, w.in)
		if err != nil {
			return err
		}
		w.after = after
		return nil
	}
	before := *w.before
	w.before = &before
	current := before
	after, err := s.transfers.Update(w.tx, w.userID, &current, w.in)
	if err != nil {
		return err
	}
	w.after = after
	return nil
}

func synchronizeStep(s *Store, w *write) error {
	for _, syncer := range s.syncers {
		if err := syncer.Sync(w.tx, w.userID, w.before, w.after); err != nil {
			return fmt.Errorf("%s sync: %w", syncer.Name(), err)
		}
	}
	return nil
}

func removeStep(s *Store, w *write) error {
	if w.before.TransferGroup != nil {
		return s.transfers.DeletePair(w.tx, w.userID, *w.before.TransferGroup)
	}
	for _, syncer := range s.syncers {
		if err := syncer.Sync(w.tx, w.userID, w.before, nil); err != nil {
			return fmt.Errorf("%s sync: %w", syncer.Name(), err)
		}
	}
	return w.tx.Delete(&models.Transaction{}, w.before.ID).Error
}
