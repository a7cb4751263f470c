package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/watchweek/internal/models"
)

func TestMoveTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	show := f.addTitle(t, "Dark", models.KindSeries)

	p, err := f.lists.MoveTitle(ctx, MoveRequest{OwnerID: "alice", TitleID: show.ID, Bucket: models.BucketPlanned})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.False(t, p.IsRecurring)

	p, err = f.lists.MoveTitle(ctx, MoveRequest{
		OwnerID: "alice", TitleID: show.ID, Bucket: models.BucketInRotation,
		IsRecurring: boolPtr(true), LastSeason: intPtr(1), LastEpisode: intPtr(4),
	})
	require.NoError(t, err)
	assert.True(t, p.IsRecurring)
	assert.Equal(t, 4, *p.LastEpisodeRangeEnd)

	// Nil fields keep what is stored
	p, err = f.lists.MoveTitle(ctx, MoveRequest{OwnerID: "alice", TitleID: show.ID, Bucket: models.BucketInRotation})
	require.NoError(t, err)
	assert.True(t, p.IsRecurring)
	assert.Equal(t, 4, *p.LastEpisode)

	p, err = f.lists.MoveTitle(ctx, MoveRequest{OwnerID: "alice", TitleID: show.ID, Bucket: models.BucketFinished})
	require.NoError(t, err)
	assert.False(t, p.IsRecurring, "finished titles stop recurring")

	rows, err := f.db.ListProgress(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMoveTitle_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	movie := f.addTitle(t, "Dune", models.KindMovie)

	tests := []struct {
		name  string
		req   MoveRequest
		field string
	}{
		{"unknown bucket", MoveRequest{OwnerID: "alice", TitleID: movie.ID, Bucket: "someday"}, "bucket"},
		{"unknown title", MoveRequest{OwnerID: "alice", TitleID: 404, Bucket: models.BucketPlanned}, "title_id"},
		{"recurring movie", MoveRequest{OwnerID: "alice", TitleID: movie.ID, Bucket: models.BucketInRotation, IsRecurring: boolPtr(true)}, "is_recurring"},
		{"episodes on a movie", MoveRequest{OwnerID: "alice", TitleID: movie.ID, Bucket: models.BucketInRotation, LastEpisode: intPtr(2)}, "last_episode"},
		{"missing owner", MoveRequest{TitleID: movie.ID, Bucket: models.BucketPlanned}, "owner_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lists.MoveTitle(ctx, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestListProgressAndRemoveTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addTitle(t, "Dark", models.KindSeries)
	b := f.addTitle(t, "Dune", models.KindMovie)
	f.rotate(t, "alice", a, false, nil)
	_, err := f.lists.MoveTitle(ctx, MoveRequest{OwnerID: "alice", TitleID: b.ID, Bucket: models.BucketPlanned})
	require.NoError(t, err)

	all, err := f.lists.ListProgress(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rotation, err := f.lists.ListProgress(ctx, "alice", models.BucketInRotation)
	require.NoError(t, err)
	require.Len(t, rotation, 1)
	assert.Equal(t, a.ID, rotation[0].TitleID)

	_, err = f.lists.ListProgress(ctx, "alice", "later")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.lists.RemoveTitle(ctx, "alice", a.ID))
	require.NoError(t, f.lists.RemoveTitle(ctx, "alice", a.ID))
	all, err = f.lists.ListProgress(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
