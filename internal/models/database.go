package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amaumene/watchweek/internal/timewindow"
)

// Database wraps the gorm connection
type Database struct {
	db *gorm.DB
}

var _ Store = (*Database)(nil)
var _ Transactor = (*Database)(nil)

// NewDatabase opens (or creates) the sqlite database and migrates the schema
func NewDatabase(path string) (*Database, error) {
	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// One connection serializes writers; transactions never interleave.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Title{}, &Progress{}, &ScheduleItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Atomically runs fn inside a transaction
func (d *Database) Atomically(ctx context.Context, fn func(tx Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Title operations

// CreateTitle inserts a catalog title
func (d *Database) CreateTitle(ctx context.Context, title *Title) error {
	return d.db.WithContext(ctx).Create(title).Error
}

// GetTitleByID retrieves a title by ID
func (d *Database) GetTitleByID(ctx context.Context, id uint64) (*Title, error) {
	var title Title
	if err := d.db.WithContext(ctx).Take(&title, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &title, nil
}

// ListTitles retrieves every catalog title ordered by name
func (d *Database) ListTitles(ctx context.Context) ([]*Title, error) {
	var titles []*Title
	err := d.db.WithContext(ctx).Order("name, id").Find(&titles).Error
	return titles, err
}

// Progress operations

// GetProgress retrieves the progress row for an owner and title
func (d *Database) GetProgress(ctx context.Context, ownerID string, titleID uint64) (*Progress, error) {
	var p Progress
	err := d.db.WithContext(ctx).
		Where("owner_id = ? AND title_id = ?", ownerID, titleID).
		Take(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpsertProgress inserts the row or overwrites the existing (owner, title) row
func (d *Database) UpsertProgress(ctx context.Context, p *Progress) error {
	tx := d.db.WithContext(ctx)

	var existing Progress
	err := tx.Where("owner_id = ? AND title_id = ?", p.OwnerID, p.TitleID).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.ID = 0
		return tx.Create(p).Error
	case err != nil:
		return err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return tx.Save(p).Error
}

// ListProgress retrieves all progress rows of an owner
func (d *Database) ListProgress(ctx context.Context, ownerID string) ([]*Progress, error) {
	var rows []*Progress
	err := d.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("title_id").
		Find(&rows).Error
	return rows, err
}

// DeleteProgress removes an owner's progress for a title; schedule items are kept
func (d *Database) DeleteProgress(ctx context.Context, ownerID string, titleID uint64) error {
	return d.db.WithContext(ctx).
		Where("owner_id = ? AND title_id = ?", ownerID, titleID).
		Delete(&Progress{}).Error
}

// BucketCount is one row of CountProgressByBucket
type BucketCount struct {
	Bucket Bucket
	Count  int64
}

// CountProgressByBucket counts progress rows per bucket across owners
func (d *Database) CountProgressByBucket(ctx context.Context) ([]BucketCount, error) {
	var counts []BucketCount
	err := d.db.WithContext(ctx).Model(&Progress{}).
		Select("bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&counts).Error
	return counts, err
}

// Schedule operations

// CreateSchedule inserts a new schedule item
func (d *Database) CreateSchedule(ctx context.Context, item *ScheduleItem) error {
	return d.db.WithContext(ctx).Create(item).Error
}

// GetSchedule retrieves an owner's schedule item by ID
func (d *Database) GetSchedule(ctx context.Context, ownerID string, id uint64) (*ScheduleItem, error) {
	var item ScheduleItem
	err := d.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Take(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListSchedules retrieves an owner's items with start <= date <= end
func (d *Database) ListSchedules(ctx context.Context, ownerID string, start, end timewindow.Date) ([]*ScheduleItem, error) {
	var items []*ScheduleItem
	err := d.db.WithContext(ctx).
		Where("owner_id = ? AND scheduled_date >= ? AND scheduled_date <= ?", ownerID, start, end).
		Order("scheduled_date, id").
		Find(&items).Error
	return items, err
}

// ListCompletedSchedules retrieves an owner's most recent completed items.
// Within a day slotted items come first, so a limit cutting through a day keeps
// the same items timewindow.CompareHistory would put first.
func (d *Database) ListCompletedSchedules(ctx context.Context, ownerID string, limit int) ([]*ScheduleItem, error) {
	var items []*ScheduleItem
	err := d.db.WithContext(ctx).
		Where("owner_id = ? AND is_completed = ?", ownerID, true).
		Order("scheduled_date DESC, CASE WHEN priority_slot IS NULL THEN 1 ELSE 0 END, priority_slot, id").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// DeleteSchedule hard deletes an item; deleting a missing item is not an error
func (d *Database) DeleteSchedule(ctx context.Context, ownerID string, id uint64) error {
	return d.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&ScheduleItem{}).Error
}

// SetScheduleCompleted is the guarded PENDING<->DONE transition
func (d *Database) SetScheduleCompleted(ctx context.Context, ownerID string, id uint64, completed bool, at time.Time) (bool, error) {
	var completedAt *time.Time
	if completed {
		completedAt = &at
	}

	res := d.db.WithContext(ctx).Model(&ScheduleItem{}).
		Where("id = ? AND owner_id = ? AND is_completed = ?", id, ownerID, !completed).
		Updates(map[string]any{
			"is_completed": completed,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindOrphanedSchedules retrieves items whose owner has no progress row for the
// title. An empty ownerID searches every owner.
func (d *Database) FindOrphanedSchedules(ctx context.Context, ownerID string) ([]*ScheduleItem, error) {
	q := d.db.WithContext(ctx).
		Table("schedule_items AS s").
		Select("s.*").
		Joins("LEFT JOIN progress AS p ON p.owner_id = s.owner_id AND p.title_id = s.title_id").
		Where("p.id IS NULL")
	if ownerID != "" {
		q = q.Where("s.owner_id = ?", ownerID)
	}

	var items []*ScheduleItem
	err := q.Order("s.scheduled_date, s.id").Find(&items).Error
	for _, item := range items {
		item.Orphaned = true
	}
	return items, err
}

// DeleteOrphanedSchedules removes an owner's items that have no progress row
func (d *Database) DeleteOrphanedSchedules(ctx context.Context, ownerID string) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("NOT EXISTS (SELECT 1 FROM progress AS p WHERE p.owner_id = schedule_items.owner_id AND p.title_id = schedule_items.title_id)").
		Delete(&ScheduleItem{})
	return res.RowsAffected, res.Error
}

// CountSchedules counts items by completion flag across owners
func (d *Database) CountSchedules(ctx context.Context) (pending, done int64, err error) {
	if err = d.db.WithContext(ctx).Model(&ScheduleItem{}).Where("is_completed = ?", false).Count(&pending).Error; err != nil {
		return 0, 0, err
	}
	if err = d.db.WithContext(ctx).Model(&ScheduleItem{}).Where("is_completed = ?", true).Count(&done).Error; err != nil {
		return 0, 0, err
	}
	return pending, done, nil
}
