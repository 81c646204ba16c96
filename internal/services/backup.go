package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/models"
)

var (
	ErrBackupCorrupt  = errors.New("backup_corrupt")
	ErrBackupMismatch = errors.New("backup_user_mismatch")
)

// BackupService snapshots a user's data to a Store and restores it.
type BackupService struct {
	db     *gorm.DB
	store  backup.Store
	format backup.Format
	keep   int
	now    func() time.Time
	log    zerolog.Logger
}

// NewBackupService keeps at most keep snapshots per user; keep <= 0 keeps all.
func NewBackupService(db *gorm.DB, store backup.Store, format backup.Format, keep int, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		store:  store,
		format: format,
		keep:   keep,
		now:    time.Now,
		log:    log.With().Str("service", "backup").Logger(),
	}
}

func (s *BackupService) snapshot(ctx context.Context, userID uint) (*backup.Snapshot, error) {
	db := s.db.WithContext(ctx)
	snap := &backup.Snapshot{
		Version:   backup.SnapshotVersion,
		CreatedAt: s.now().UTC(),
		UserID:    userID,
	}

	var company models.CompanySettings
	err := db.Where("user_id = ?", userID).First(&company).Error
	switch {
	case err == nil:
		snap.Company = &company
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := db.Where("user_id = ?", userID).Order("id").Find(&snap.Clients).Error; err != nil {
		return nil, err
	}
	err = db.Where("user_id = ?", userID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position, id") }).
		Order("id").Find(&snap.Quotes).Error
	if err != nil {
		return nil, err
	}
	err = db.Where("user_id = ?", userID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position, id") }).
		Order("id").Find(&snap.Calculations).Error
	if err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Order("currency").Find(&snap.Rates).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Create stores a snapshot of userID's data and prunes old ones.
func (s *BackupService) Create(ctx context.Context, userID uint) (*models.Backup, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot user %d: %w", userID, err)
	}
	var buf bytes.Buffer
	if err := backup.Encode(&buf, snap, s.format); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	entry := &models.Backup{
		ID:           id,
		CreatedAt:    snap.CreatedAt,
		UserID:       userID,
		Key:          fmt.Sprintf("user-%d/%s-%s%s", userID, snap.CreatedAt.Format("20060102T150405Z"), id[:8], s.format.Ext()),
		Format:       string(s.format),
		Size:         int64(buf.Len()),
		Checksum:     checksum(buf.Bytes()),
		Clients:      len(snap.Clients),
		Quotes:       len(snap.Quotes),
		Calculations: len(snap.Calculations),
	}
	if err := s.store.Put(ctx, entry.Key, bytes.NewReader(buf.Bytes())); err != nil {
		return nil, fmt.Errorf("store backup: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if derr := s.store.Delete(ctx, entry.Key); derr != nil {
			s.log.Warn().Err(derr).Str("key", entry.Key).Msg("Failed to remove orphaned backup object")
		}
		return nil, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Str("backup_id", id).
		Int64("size", entry.Size).
		Msg("Backup created")

	if err := s.prune(ctx, userID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to prune old backups")
	}
	return entry, nil
}

// CreateAll backs up every user. One failing user does not stop the others.
func (s *BackupService) CreateAll(ctx context.Context) error {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Create(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// List returns the user's backups, newest first.
func (s *BackupService) List(ctx context.Context, userID uint) ([]models.Backup, error) {
	var out []models.Backup
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id").Find(&out).Error
	return out, err
}

func (s *BackupService) Get(ctx context.Context, userID uint, id string) (*models.Backup, error) {
	var b models.Backup
	err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&b).Error
	if err != nil {
		return nil, notFound(err, "backup")
	}
	return &b, nil
}

// Open returns the catalogue entry and the raw encoded snapshot.
// The caller closes the reader.
func (s *BackupService) Open(ctx context.Context, userID uint, id string) (*models.Backup, io.ReadCloser, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(ctx, b.Key)
	if errors.Is(err, backup.ErrNotFound) {
		return nil, nil, fmt.Errorf("backup %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return b, rc, nil
}

// Restore replaces all of the user's data with the content of backup id.
// Nothing changes unless the whole snapshot applies.
func (s *BackupService) Restore(ctx context.Context, userID uint, id string) (*backup.Snapshot, error) {
	b, rc, err := s.Open(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}
	if b.Checksum != "" && checksum(raw) != b.Checksum {
		return nil, fmt.Errorf("backup %s: %w", id, ErrBackupCorrupt)
	}
	snap, err := backup.Decode(bytes.NewReader(raw), backup.Format(b.Format))
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w: %v", id, ErrBackupCorrupt, err)
	}
	if snap.UserID != userID {
		return nil, fmt.Errorf("backup %s: %w", id, ErrBackupMismatch)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := wipeUserData(tx, userID); err != nil {
			return err
		}
		return insertSnapshot(tx, snap)
	})
	if err != nil {
		return nil, fmt.Errorf("restore backup %s: %w", id, err)
	}

	s.log.Info().Uint("user_id", userID).Str("backup_id", id).Msg("Backup restored")
	return snap, nil
}

func wipeUserData(tx *gorm.DB, userID uint) error {
	quoteIDs := tx.Model(&models.Quote{}).Select("id").Where("user_id = ?", userID)
	calcIDs := tx.Model(&models.Calculation{}).Select("id").Where("user_id = ?", userID)

	steps := []func() error{
		func() error { return tx.Where("quote_id IN (?)", quoteIDs).Delete(&models.QuoteItem{}).Error },
		func() error { return tx.Where("calculation_id IN (?)", calcIDs).Delete(&models.CalculationItem{}).Error },
		func() error { return tx.Where("user_id = ?", userID).Delete(&models.Quote{}).Error },
		func() error { return tx.Where("user_id = ?", userID).Delete(&models.Calculation{}).Error },
		func() error { return tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Client{}).Error },
		func() error { return tx.Where("user_id = ?", userID).Delete(&models.ExchangeRate{}).Error },
		func() error { return tx.Unscoped().Where("user_id = ?", userID).Delete(&models.CompanySettings{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// insertSnapshot writes snap with its original IDs. Children are inserted
// separately so associations never cascade.
func insertSnapshot(tx *gorm.DB, snap *backup.Snapshot) error {
	create := func(v any, n int) error {
		if n == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(v).Error
	}

	if snap.Company != nil {
		snap.Company.UserID = snap.UserID
		if err := create(snap.Company, 1); err != nil {
			return err
		}
	}
	for i := range snap.Clients {
		snap.Clients[i].UserID = snap.UserID
	}
	if err := create(&snap.Clients, len(snap.Clients)); err != nil {
		return err
	}

	var quoteItems []models.QuoteItem
	for i := range snap.Quotes {
		snap.Quotes[i].UserID = snap.UserID
		quoteItems = append(quoteItems, snap.Quotes[i].Items...)
	}
	if err := create(&snap.Quotes, len(snap.Quotes)); err != nil {
		return err
	}
	if err := create(&quoteItems, len(quoteItems)); err != nil {
		return err
	}

	var calcItems []models.CalculationItem
	for i := range snap.Calculations {
		snap.Calculations[i].UserID = snap.UserID
		calcItems = append(calcItems, snap.Calculations[i].Items...)
	}
	if err := create(&snap.Calculations, len(snap.Calculations)); err != nil {
		return err
	}
	if err := create(&calcItems, len(calcItems)); err != nil {
		return err
	}

	for i := range snap.Rates {
		snap.Rates[i].UserID = snap.UserID
	}
	if err := create(&snap.Rates, len(snap.Rates)); err != nil {
		return err
	}
	return resyncSequences(tx)
}

// resyncSequences moves postgres serial sequences past the restored IDs.
func resyncSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	tables := []string{"company_settings", "clients", "quotes", "quote_items", "calculations", "calculation_items", "exchange_rates"}
	for _, t := range tables {
		sql := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)", t)
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("resync %s sequence: %w", t, err)
		}
	}
	return nil
}

// prune drops the oldest backups beyond the retention limit. Objects are
// removed before their catalogue rows.
func (s *BackupService) prune(ctx context.Context, userID uint) error {
	if s.keep <= 0 {
		return nil
	}
	entries, err := s.List(ctx, userID)
	if err != nil || len(entries) <= s.keep {
		return err
	}
	var errs []error
	for _, b := range entries[s.keep:] {
		if err := s.store.Delete(ctx, b.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.db.WithContext(ctx).Delete(&models.Backup{}, "id = ?", b.ID).Error; err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.Debug().Str("backup_id", b.ID).Msg("Pruned backup")
	}
	return errors.Join(errs...)
}

// BackupJob backs up every user on the scheduler.
type BackupJob struct {
	Backups *BackupService
}

func (j BackupJob) Name() string { return "backup" }

func (j BackupJob) Run(ctx context.Context) error {
	return j.Backups.CreateAll(ctx)
}
