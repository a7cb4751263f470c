package controllers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/watchweek/internal/announce"
	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/metrics"
	"github.com/amaumene/watchweek/internal/models"
	"github.com/amaumene/watchweek/internal/timewindow"
)

// Wednesday, 12:00 UTC
var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type recordingAnnouncer struct {
	mu     sync.Mutex
	events []announce.Event
}

func (r *recordingAnnouncer) Announce(ev announce.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAnnouncer) Events() []announce.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]announce.Event(nil), r.events...)
}

type fixture struct {
	db        *models.Database
	catalog   *catalog.Catalog
	schedule  *ScheduleController
	lists     *ListController
	cleanup   *CleanupController
	announcer *recordingAnnouncer
	registry  *prometheus.Registry
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cat := catalog.New(db, time.Minute, logger)

	f := &fixture{
		db:        db,
		catalog:   cat,
		lists:     NewListController(db, cat, logger),
		cleanup:   NewCleanupController(db, m, logger),
		announcer: &recordingAnnouncer{},
		registry:  reg,
		now:       fixedNow,
	}
	f.schedule = NewScheduleController(db, cat, timewindow.New(timewindow.DefaultOffset), NewRecurrenceResolver(), f.announcer, m, logger)
	f.schedule.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) addTitle(t *testing.T, name string, kind models.Kind) *models.Title {
	t.Helper()
	title, err := f.catalog.AddTitle(context.Background(), name, kind)
	require.NoError(t, err)
	return title
}

// rotate puts the title in the owner's rotation with the given progress
func (f *fixture) rotate(t *testing.T, owner string, title *models.Title, recurring bool, lastEpisode *int) {
	t.Helper()
	require.NoError(t, f.db.UpsertProgress(context.Background(), &models.Progress{
		OwnerID:     owner,
		TitleID:     title.ID,
		Bucket:      models.BucketInRotation,
		IsRecurring: recurring,
		LastEpisode: lastEpisode,
	}))
}

func (f *fixture) progress(t *testing.T, owner string, title *models.Title) *models.Progress {
	t.Helper()
	p, err := f.db.GetProgress(context.Background(), owner, title.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) plan(t *testing.T, req CreateScheduleRequest) *models.ScheduleItem {
	t.Helper()
	item, err := f.schedule.CreateSchedule(context.Background(), req)
	require.NoError(t, err)
	return item
}

func date(t *testing.T, s string) timewindow.Date {
	t.Helper()
	d, err := timewindow.ParseDate(s)
	require.NoError(t, err)
	return d
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
