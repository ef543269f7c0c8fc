// Package notify stores in-app notifications and mirrors them to email when the user opted in.
package notify

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
)

var ErrNotFound = errors.New("notification not found")

// Message is a notification to raise for one user.
type Message struct {
	UserID   uint
	Title    string
	Body     string
	Level    string
	Category string
	LinkURL  string
}

type Service struct {
	db     *gorm.DB
	mailer Mailer
	logger *common.Logger
}

func NewService(db *gorm.DB, mailer Mailer, logger *common.Logger) *Service {
	return &Service{db: db, mailer: mailer, logger: logger.WithComponent("notify")}
}

// Dispatch stores the notification and emails it if the user's profile asks for it.
// It reports whether the notification was stored; failures are logged, never returned.
func (s *Service) Dispatch(ctx context.Context, msg Message) bool {
	level := msg.Level
	if level == "" {
		level = models.LevelInfo
	}
	n := &models.Notification{
		UserID:   msg.UserID,
		Title:    msg.Title,
		Message:  msg.Body,
		Level:    level,
		Category: msg.Category,
		LinkURL:  msg.LinkURL,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		s.logger.Warn().Err(err).Uint("user_id", msg.UserID).Str("title", msg.Title).Msg("Notification not stored")
		return false
	}

	if s.email(ctx, msg) {
		if err := s.db.WithContext(ctx).Model(n).Update("email_sent", true).Error; err != nil {
			s.logger.Warn().Err(err).Uint("notification_id", n.ID).Msg("Could not flag notification as emailed")
		}
	}
	return true
}

func (s *Service) email(ctx context.Context, msg Message) bool {
	if s.mailer == nil {
		return false
	}
	var profile models.Profile
	res := s.db.WithContext(ctx).Where("user_id = ?", msg.UserID).Limit(1).Find(&profile)
	if res.Error != nil || res.RowsAffected == 0 || !profile.WantsEmail(msg.Category) {
		return false
	}
	if err := s.mailer.Send(ctx, profile.Email, msg.Title, msg.Body); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", msg.UserID).Msg("Notification email failed")
		return false
	}
	return true
}

// Exists reports whether a notification with this exact title was raised since the given time.
func (s *Service) Exists(ctx context.Context, userID uint, title string, since time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND title = ? AND created_at >= ?", userID, title, since).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}
