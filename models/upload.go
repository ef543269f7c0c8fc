package models

import (
	"time"
)

const (
	UploadPending  = "PENDING"
	UploadParsed   = "PARSED"
	UploadImported = "IMPORTED"
	UploadFailed   = "FAILED"
)

// StatementUpload tracks a statement file received over HTTP or through the inbox.
type StatementUpload struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint   `gorm:"index;not null;uniqueIndex:idx_upload_user_file"`
	AccountID     *uint  `gorm:"index"`
	FileName      string `gorm:"size:255;not null;uniqueIndex:idx_upload_user_file"`
	StorePath     string `gorm:"column:store_path;size:512"`
	ContentType   string `gorm:"size:128"`
	StatementType string `gorm:"size:20"`
	Status        string `gorm:"size:10;default:PENDING;index"`
	FailedReason  string `gorm:"size:255"`
	RowCount      int
	ImportedCount int
}
