package models

import "time"

// Progress is how far one owner got in one title, and which list holds it
type Progress struct {
	ID      uint64 `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"not null;uniqueIndex:idx_progress_owner_title" json:"owner_id"`
	TitleID uint64 `gorm:"not null;uniqueIndex:idx_progress_owner_title" json:"title_id"`

	Bucket      Bucket `gorm:"not null;index" json:"bucket"`
	IsRecurring bool   `json:"is_recurring"` // Sessions repeat weekly until finished

	// Series/anime only
	LastSeason          *int `json:"last_season,omitempty"`
	LastEpisode         *int `json:"last_episode,omitempty"`
	LastEpisodeRangeEnd *int `json:"last_episode_range_end,omitempty"` // >= LastEpisode when set

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Progress) TableName() string { return "progress" }

// Clone returns a deep copy so callers can mutate without aliasing the pointers
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	c := *p
	c.LastSeason = cloneInt(p.LastSeason)
	c.LastEpisode = cloneInt(p.LastEpisode)
	c.LastEpisodeRangeEnd = cloneInt(p.LastEpisodeRangeEnd)
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
