// Package inbox imports statement files dropped into a directory, either as a one-off scan or
// by watching the directory for new files.
package inbox

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
	"github.com/Simonwafula/personal-finance-app/pkg/common"
	"github.com/Simonwafula/personal-finance-app/pkg/ocr"
	"github.com/Simonwafula/personal-finance-app/pkg/statement"
)

// archiveLimit is the size above which scanned images are downscaled when archived.
const archiveLimit = 1_000_000

// Importer is satisfied by *statement.Importer.
type Importer interface {
	ImportFile(ctx context.Context, userID, accountID uint, path string, opts statement.Options) (*models.StatementUpload, *statement.ConfirmResult, error)
}

type Config struct {
	Dir          string
	ProcessedDir string
	UserID       uint
	AccountID    uint
	Workers      int
	Options      statement.Options
	// ArchiveMaxDim bounds the longer side of archived images.
	ArchiveMaxDim int
}

// Stats counts files per outcome.
type Stats struct {
	Imported   int64
	Duplicates int64
	Skipped    int64
	Failed     int64
}

type Inbox struct {
	db       *gorm.DB
	importer Importer
	cfg      Config
	logger   *common.Logger

	mu   sync.RWMutex
	done map[string]bool // file name -> already imported

	imported, duplicates, skipped, failed atomic.Int64
}

func New(db *gorm.DB, imp Importer, cfg Config, logger *common.Logger) *Inbox {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = filepath.Join(cfg.Dir, "processed")
	}
	if cfg.ArchiveMaxDim <= 0 {
		cfg.ArchiveMaxDim = 2000
	}
	return &Inbox{
		db:       db,
		importer: imp,
		cfg:      cfg,
		logger:   logger.WithComponent("inbox"),
		done:     make(map[string]bool, 256),
	}
}

// Preload remembers which files the user has already imported so they are not parsed again.
func (b *Inbox) Preload(ctx context.Context) error {
	var names []string
	err := b.db.WithContext(ctx).Model(&models.StatementUpload{}).
		Where("user_id = ? AND status = ?", b.cfg.UserID, models.UploadImported).
		Pluck("file_name", &names).Error
	if err != nil {
		return err
	}
	b.mu.Lock()
	for _, n := range names {
		b.done[n] = true
	}
	b.mu.Unlock()
	b.logger.Debug().Int("imported", len(names)).Msg("Preloaded uploads")
	return nil
}

func (b *Inbox) Stats() Stats {
	return Stats{
		Imported:   b.imported.Load(),
		Duplicates: b.duplicates.Load(),
		Skipped:    b.skipped.Load(),
		Failed:     b.failed.Load(),
	}
}

// Candidate reports whether a file name should be picked up.
func Candidate(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".part") || strings.HasSuffix(lower, ".tmp") {
		return false
	}
	return statement.Supported(name)
}

func (b *Inbox) list() ([]string, error) {
	entries, err := os.ReadDir(b.cfg.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !Candidate(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Scan imports every candidate file currently in the directory and returns the running totals.
func (b *Inbox) Scan(ctx context.Context) (Stats, error) {
	files, err := b.list()
	if err != nil {
		return b.Stats(), err
	}
	b.logger.Info().Str("dir", b.cfg.Dir).Int("files", len(files)).Int("workers", b.cfg.Workers).Msg("Scanning inbox")
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, f := range files {
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	b.pool(ctx, ch)
	return b.Stats(), ctx.Err()
}

// Watch imports files as they appear, after their size has settled, until ctx is cancelled.
func (b *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(b.cfg.Dir); err != nil {
		return err
	}
	b.logger.Info().Str("dir", b.cfg.Dir).Msg("Watching inbox")

	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				name := filepath.Base(ev.Name)
				if Candidate(name) {
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) < 500*time.Millisecond {
						continue
					}
					delete(pending, name)
					select {
					case ch <- name:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				b.logger.Warn().Err(err).Msg("Watch error")
			}
		}
	}()
	b.pool(ctx, ch)
	return nil
}

func (b *Inbox) pool(ctx context.Context, ch <-chan string) {
	var wg sync.WaitGroup
	for i := 0; i < b.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range ch {
				b.process(ctx, name)
			}
		}()
	}
	wg.Wait()
}

func (b *Inbox) seen(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done[name]
}

func (b *Inbox) process(ctx context.Context, name string) {
	path := filepath.Join(b.cfg.Dir, name)
	log := b.logger.With().Str("file", name).Logger()
	if b.seen(name) {
		b.skipped.Add(1)
		log.Debug().Msg("Already imported")
		return
	}
	if _, err := os.Stat(path); err != nil {
		b.skipped.Add(1)
		return
	}

	upload, res, err := b.importer.ImportFile(ctx, b.cfg.UserID, b.cfg.AccountID, path, b.cfg.Options)
	if err != nil {
		b.failed.Add(1)
		ev := log.Warn().Err(err)
		if upload != nil {
			ev = ev.Uint("upload_id", upload.ID)
		}
		ev.Msg("Import failed; file left in inbox")
		return
	}
	b.imported.Add(int64(res.Created))
	b.duplicates.Add(int64(res.Duplicates))
	log.Info().Uint("upload_id", upload.ID).Int("created", res.Created).Int("duplicates", res.Duplicates).
		Bool("dry_run", res.DryRun).Msg("Statement imported")
	if res.DryRun {
		return
	}

	b.mu.Lock()
	b.done[name] = true
	b.mu.Unlock()
	if err := b.archive(path, name); err != nil {
		log.Warn().Err(err).Msg("Failed to move imported file")
	}
}

// archive moves an imported file to the processed directory, downscaling large scans.
func (b *Inbox) archive(src, name string) error {
	if err := os.MkdirAll(b.cfg.ProcessedDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(b.cfg.ProcessedDir, name)
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if statement.IsImage(name) && fi.Size() > archiveLimit {
		if err := ocr.ShrinkForArchive(src, dst, b.cfg.ArchiveMaxDim); err == nil {
			return os.Remove(src)
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
