package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// previewStatementHandler stores the uploaded file, parses it and returns editable rows.
// Nothing is written to the ledger until /statements/confirm.
func previewStatementHandler(c *gin.Context) {
	userID := currentUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > cfg.Uploads.MaxBytes() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large (max %dMB)", cfg.Uploads.MaxSizeMB)})
		return
	}
	name := filepath.Base(file.Filename)
	if !statement.Supported(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": statement.ErrUnsupported.Error()})
		return
	}

	var opts statement.Options
	if v := strings.TrimSpace(c.PostForm("opening_balance")); v != "" {
		ob, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opening_balance"})
			return
		}
		opts.OpeningBalance = &ob
	}
	opts.FirstKind = strings.ToUpper(c.PostForm("first_kind"))

	dir := filepath.Join(cfg.Uploads.BaseDir, fmt.Sprintf("user_%d", userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(c, err)
		return
	}
	fullPath := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		respondError(c, err)
		return
	}

	upload := models.StatementUpload{UserID: userID, FileName: name}
	err = db.Where(models.StatementUpload{UserID: userID, FileName: name}).
		Assign(models.StatementUpload{StorePath: fullPath, ContentType: file.Header.Get("Content-Type"), Status: models.UploadPending}).
		FirstOrCreate(&upload).Error
	if err != nil {
		respondError(c, err)
		return
	}

	parsed, rows, summary, err := importer.PreviewFile(fullPath, opts)
	if err != nil {
		db.Model(&upload).Updates(map[string]any{"status": models.UploadFailed, "failed_reason": common.Truncate(err.Error(), 255)})
		if errors.Is(err, statement.ErrUnsupported) || errors.Is(err, statement.ErrEmpty) || statement.IsImage(name) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "upload_id": upload.ID})
			return
		}
		respondError(c, err)
		return
	}
	db.Model(&upload).Updates(map[string]any{
		"status":         models.UploadParsed,
		"statement_type": parsed.Type,
		"row_count":      len(rows),
		"failed_reason":  "",
	})
	c.JSON(http.StatusOK, gin.H{
		"upload_id":      upload.ID,
		"statement_type": parsed.Type,
		"rows":           rows,
		"summary":        summary,
	})
}

type confirmRequest struct {
	statement.ConfirmRequest
	UploadID *uint `json:"upload_id"`
}

func confirmStatementHandler(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(c)
	if req.UploadID != nil {
		var upload models.StatementUpload
		if db.Where("id = ? AND user_id = ?", *req.UploadID, userID).Limit(1).Find(&upload).RowsAffected > 0 {
			req.Format = statement.FormatOf(upload.FileName)
		}
	}
	res, err := importer.Confirm(c.Request.Context(), userID, req.ConfirmRequest)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.UploadID != nil && !res.DryRun {
		db.Model(&models.StatementUpload{}).
			Where("id = ? AND user_id = ?", *req.UploadID, userID).
			Updates(map[string]any{"status": models.UploadImported, "account_id": req.AccountID, "imported_count": res.Created})
	}
	c.JSON(http.StatusOK, res)
}

func listUploadsHandler(c *gin.Context) {
	q := db.Model(&models.StatementUpload{})
	if c.GetString("role") != models.RoleAdministrator {
		q = q.Where("user_id = ?", currentUserID(c))
	}
	var uploads []models.StatementUpload
	if err := q.Order("id desc").Limit(100).Find(&uploads).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}
