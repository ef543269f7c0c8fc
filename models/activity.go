package models

import "time"

const (
	ActorUser   = "USER"
	ActorSystem = "SYSTEM"
)

// ActivityLog is one entry of a user's audit trail.
type ActivityLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"index:idx_activity_user_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time      `json:"-"`
	UserID     uint           `gorm:"not null;index:idx_activity_user_created,priority:1;index:idx_activity_user_action,priority:1" json:"-"`
	Actor      string         `gorm:"size:10;default:USER;not null" json:"actor"`
	Action     string         `gorm:"size:50;not null;index:idx_activity_user_action,priority:2" json:"action"`
	EntityType string         `gorm:"size:50;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID   string         `gorm:"size:64;index:idx_activity_entity,priority:2" json:"entity_id"`
	Summary    string         `gorm:"size:255;not null" json:"summary"`
	Metadata   map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata"`
}
