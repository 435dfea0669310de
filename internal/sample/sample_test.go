package sample_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
	"github.com/pkordes/viewpoint-explorer/backend/internal/repo"
	"github.com/pkordes/viewpoint-explorer/backend/internal/sample"
)

var (
	sunriseRidge = uuid.MustParse("f60c3f69-cd9b-4d17-84a8-d1c8c5c84a42")
	timberline   = uuid.MustParse("3b1e6d2a-8f4c-4b7e-9a1d-5c6e7f8a9b01")
	cooperDraft  = uuid.MustParse("3b1e6d2a-8f4c-4b7e-9a1d-5c6e7f8a9b05")
	trillium     = uuid.MustParse("3b1e6d2a-8f4c-4b7e-9a1d-5c6e7f8a9b04")
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T, opts repo.ViewpointRepoOptions) *sample.Repo {
	t.Helper()
	r, err := sample.NewRepo(opts)
	require.NoError(t, err, "embedded catalogue must load")
	return r
}

func list(t *testing.T, r *sample.Repo, f domain.ViewpointFilter) []domain.Viewpoint {
	t.Helper()
	got, err := r.List(context.Background(), f)
	require.NoError(t, err)
	return got
}

// ---- List ----

func TestRepo_List_PublishedNewestFirst(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	got := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, nil, nil))

	require.Len(t, got, 7, "the draft is never listed")
	for i, vp := range got {
		assert.Equal(t, domain.StatusPublished, vp.Status)
		assert.NotEqual(t, cooperDraft, vp.ID)
		assert.Nil(t, vp.Comments)
		assert.Nil(t, vp.DistanceM)
		assert.NotNil(t, vp.Media)
		assert.NotNil(t, vp.Tags)
		if i > 0 {
			assert.False(t, vp.AddedAt.After(got[i-1].AddedAt))
		}
	}
}

func TestRepo_List_PagesAreDisjoint(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})
	all := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, nil, nil))

	first := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, ptr(3), ptr(0)))
	second := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, ptr(3), ptr(3)))

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	assert.Equal(t, all[:6], append(first, second...))

	past := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, nil, ptr(100)))
	assert.NotNil(t, past)
	assert.Empty(t, past)
}

func TestRepo_List_TagFilter(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	got := list(t, r, domain.NewViewpointFilter(nil, nil, nil, ptr("sunrise"), nil, nil))

	require.Len(t, got, 2)
	for _, vp := range got {
		assert.Contains(t, slugs(vp), "sunrise")
	}

	none := list(t, r, domain.NewViewpointFilter(nil, nil, nil, ptr("no-such-tag"), nil, nil))
	assert.Empty(t, none)
}

func TestRepo_List_NearSetsDistanceWithinRadius(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	got := list(t, r, domain.NewViewpointFilter(ptr(45.3265), ptr(-121.7112), nil, nil, nil, nil))

	require.Len(t, got, 2, "Sunrise Ridge itself and Timberline are within 5 km")
	assert.Equal(t, timberline, got[0].ID, "still newest first, not nearest first")
	assert.Equal(t, sunriseRidge, got[1].ID)
	for _, vp := range got {
		require.NotNil(t, vp.DistanceM)
		assert.LessOrEqual(t, *vp.DistanceM, domain.DefaultRadiusM)
	}
	assert.InDelta(t, 0, *got[1].DistanceM, 1e-6)
}

func TestRepo_List_NegativeRadiusMatchesNothing(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	got := list(t, r, domain.NewViewpointFilter(ptr(45.3265), ptr(-121.7112), ptr(-1.0), nil, nil, nil))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepo_List_AggregatesAreOrdered(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	got := list(t, r, domain.NewViewpointFilter(ptr(45.3265), ptr(-121.7112), ptr(10.0), nil, nil, nil))

	require.Len(t, got, 1)
	vp := got[0]
	require.Len(t, vp.Media, 2)
	assert.Equal(t, 0, vp.Media[0].SortOrder)
	assert.Equal(t, 1, vp.Media[1].SortOrder)
	assert.Equal(t, []string{"mountain", "sunrise"}, slugs(vp), "tags sorted by label")
}

func TestRepo_List_ResultsDoNotAliasCatalogue(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})
	f := domain.NewViewpointFilter(nil, nil, nil, ptr("sunrise"), nil, nil)

	got := list(t, r, f)
	got[0].Tags[0].Label = "mutated"

	again := list(t, r, f)
	assert.NotEqual(t, "mutated", again[0].Tags[0].Label)
}

func TestRepo_List_CancelledContext(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.List(ctx, domain.NewViewpointFilter(nil, nil, nil, nil, nil, nil))

	assert.ErrorIs(t, err, context.Canceled)
}

// ---- GetByID ----

func TestRepo_GetByID_PublishedCommentsNewestFirst(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	vp, err := r.GetByID(context.Background(), sunriseRidge)

	require.NoError(t, err)
	require.Len(t, vp.Comments, 2, "pending comment hidden")
	assert.True(t, vp.Comments[0].CreatedAt.After(vp.Comments[1].CreatedAt))
	require.NotNil(t, vp.Comments[0].Author)
	assert.Equal(t, "Priya Chen", vp.Comments[0].Author.Name)
	assert.Nil(t, vp.Comments[1].Author)
	assert.Nil(t, vp.DistanceM)
}

func TestRepo_GetByID_NoAggregatesAreEmpty(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	vp, err := r.GetByID(context.Background(), trillium)

	require.NoError(t, err)
	assert.NotNil(t, vp.Media)
	assert.Empty(t, vp.Media)
	assert.NotNil(t, vp.Tags)
	assert.Empty(t, vp.Tags)
	assert.NotNil(t, vp.Comments)
	assert.Empty(t, vp.Comments)
	require.NotNil(t, vp.ElevationM)
	assert.Equal(t, 1100.0, *vp.ElevationM)
}

func TestRepo_GetByID_DraftVisibility(t *testing.T) {
	anyStatus := newRepo(t, repo.ViewpointRepoOptions{})
	vp, err := anyStatus.GetByID(context.Background(), cooperDraft)
	require.NoError(t, err)
	assert.Equal(t, "draft", vp.Status)

	publishedOnly := newRepo(t, repo.ViewpointRepoOptions{DetailPublishedOnly: true})
	_, err = publishedOnly.GetByID(context.Background(), cooperDraft)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_GetByID_Unknown(t *testing.T) {
	r := newRepo(t, repo.ViewpointRepoOptions{})

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Load ----

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	doc := `[{"id":"` + sunriseRidge.String() + `","addedAt":"2025-01-01T00:00:00Z"},
	         {"id":"` + sunriseRidge.String() + `","addedAt":"2025-01-02T00:00:00Z"}]`

	_, err := sample.Load([]byte(doc), repo.ViewpointRepoOptions{})

	assert.ErrorContains(t, err, "duplicate viewpoint id")
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := sample.Load([]byte(`[{"id":"`+sunriseRidge.String()+`","lat":1}]`), repo.ViewpointRepoOptions{})

	assert.Error(t, err)
}

func TestLoad_DeduplicatesTags(t *testing.T) {
	tag := `{"id":"2a7e5b8c-1d3f-4e6a-8b9c-0d1e2f3a4b51","slug":"mountain","label":"Mountain"}`
	doc := `[{"id":"` + sunriseRidge.String() + `","status":"published","addedAt":"2025-01-01T00:00:00Z","tags":[` + tag + `,` + tag + `]}]`

	r, err := sample.Load([]byte(doc), repo.ViewpointRepoOptions{})
	require.NoError(t, err)

	got := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, nil, nil))
	require.Len(t, got, 1)
	assert.Len(t, got[0].Tags, 1)
}

func TestLoad_TiedAddedAtPagesAreDisjoint(t *testing.T) {
	ids := []string{
		"00000000-0000-4000-8000-000000000001",
		"00000000-0000-4000-8000-000000000003",
		"00000000-0000-4000-8000-000000000002",
	}
	doc := "["
	for i, id := range ids {
		if i > 0 {
			doc += ","
		}
		doc += `{"id":"` + id + `","status":"published","addedAt":"2025-01-01T00:00:00Z"}`
	}
	doc += "]"

	r, err := sample.Load([]byte(doc), repo.ViewpointRepoOptions{})
	require.NoError(t, err)

	limit := 2
	var seen []string
	for offset := 0; offset < len(ids); offset += limit {
		page := list(t, r, domain.NewViewpointFilter(nil, nil, nil, nil, &limit, &offset))
		for _, vp := range page {
			seen = append(seen, vp.ID.String())
		}
	}

	// Ties fall back to id, descending.
	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, seen)
}

func slugs(vp domain.Viewpoint) []string {
	out := make([]string, len(vp.Tags))
	for i, t := range vp.Tags {
		out[i] = t.Slug
	}
	return out
}
