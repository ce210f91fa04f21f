package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm stores entries as rows of models.StoreEntry.
type Gorm struct {
	db    *gorm.DB
	quota int64
}

// NewGorm wraps db. quota limits the summed key and value length in bytes;
// zero or negative disables the check.
func NewGorm(db *gorm.DB, quota int64) *Gorm {
	return &Gorm{db: db, quota: quota}
}

func (g *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.StoreEntry
	err := g.db.WithContext(ctx).Where("store_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (g *Gorm) Set(ctx context.Context, key, value string) error {
	db := g.db.WithContext(ctx)
	if g.quota > 0 {
		if err := g.checkQuota(db, key, value); err != nil {
			return err
		}
	}

	entry := models.StoreEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (g *Gorm) checkQuota(db *gorm.DB, key, value string) error {
	var used int64
	if err := db.Model(&models.StoreEntry{}).
		Where("store_key <> ?", key).
		Select("COALESCE(SUM(LENGTH(store_key) + LENGTH(store_value)), 0)").
		Scan(&used).Error; err != nil {
		return fmt.Errorf("failed to measure storage: %w", err)
	}
	next := used + int64(len(key)+len(value))
	if next > g.quota {
		return fmt.Errorf("%w: writing %q needs %d of %d bytes", ErrQuotaExceeded, key, next, g.quota)
	}
	return nil
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("store_key = ?", key).Delete(&models.StoreEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}
