package controllers

import "github.com/amaumene/watchweek/internal/models"

// RecurrenceResolver computes the progress change caused by completing a session.
// It holds no state and never touches a store.
type RecurrenceResolver struct{}

// NewRecurrenceResolver creates a resolver
func NewRecurrenceResolver() *RecurrenceResolver {
	return &RecurrenceResolver{}
}

// RequiresDecision reports whether completing a session of title needs a
// finale decision first: an episodic title, still recurring, not yet finished.
func (r *RecurrenceResolver) RequiresDecision(title *models.Title, current *models.Progress) bool {
	if title == nil || current == nil || !title.Kind.Episodic() {
		return false
	}
	return current.IsRecurring && current.Bucket != models.BucketFinished
}

// Resolve returns the progress after item is completed, or nil when nothing
// changes. The targeted installment overwrites the stored one unconditionally,
// even if it is behind it.
func (r *RecurrenceResolver) Resolve(title *models.Title, current *models.Progress, item *models.ScheduleItem, finaleDecision *bool) *models.Progress {
	if title == nil || current == nil || !title.Kind.Episodic() {
		return nil
	}

	finale := finaleDecision != nil && *finaleDecision
	if !item.HasTarget() && !finale {
		return nil
	}

	next := current.Clone()
	if item.HasTarget() {
		next.LastSeason = copyInt(item.Season)
		next.LastEpisode = copyInt(item.EpisodeStart)
		if item.EpisodeEnd != nil {
			next.LastEpisodeRangeEnd = copyInt(item.EpisodeEnd)
		} else {
			next.LastEpisodeRangeEnd = copyInt(item.EpisodeStart)
		}
	}

	if finale {
		next.Bucket = models.BucketFinished
		next.IsRecurring = false
	}

	return next
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
