package models

import (
	"time"

	"github.com/amaumene/watchweek/internal/timewindow"
)

// ScheduleItem is one planned viewing session
type ScheduleItem struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"` // Increases with insertion order
	OwnerID       string          `gorm:"not null;index:idx_schedule_owner_date" json:"owner_id"`
	ScheduledDate timewindow.Date `gorm:"not null;index:idx_schedule_owner_date" json:"scheduled_date"`
	TitleID       uint64          `gorm:"not null;index" json:"title_id"`

	PrioritySlot *int `json:"priority_slot,omitempty"` // 1..5, nil means no preference
	IsCompleted  bool `gorm:"not null;default:false" json:"is_completed"`

	// Targeted installment, series/anime only
	Season       *int `json:"season,omitempty"`
	EpisodeStart *int `json:"episode_start,omitempty"`
	EpisodeEnd   *int `json:"episode_end,omitempty"`

	// Metadata
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Set when the owner no longer has progress for the title
	Orphaned bool `gorm:"-" json:"orphaned"`
}

func (ScheduleItem) TableName() string { return "schedule_items" }

func (s *ScheduleItem) ScheduledDay() timewindow.Date { return s.ScheduledDate }

func (s *ScheduleItem) Slot() (int, bool) {
	if s.PrioritySlot == nil {
		return 0, false
	}
	return *s.PrioritySlot, true
}

func (s *ScheduleItem) InsertionSeq() uint64 { return s.ID }

// HasTarget reports whether the session names a season or episode
func (s *ScheduleItem) HasTarget() bool {
	return s.Season != nil || s.EpisodeStart != nil
}
