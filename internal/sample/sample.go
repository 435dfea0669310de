// Package sample serves an embedded catalogue from memory so the API can run
// without a database (SAMPLE_MODE). It follows the same listing rules as the
// Postgres repository: published only, newest first, media by sort order,
// tags by label, published comments newest first, great-circle distance.
package sample

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
	"github.com/pkordes/viewpoint-explorer/backend/internal/geo"
	"github.com/pkordes/viewpoint-explorer/backend/internal/repo"
)

//go:embed viewpoints.json
var catalogue []byte

type (
	viewpointDoc struct {
		ID          uuid.UUID  `json:"id"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
		CapturedAt *time.Time   `json:"capturedAt"`
		AddedAt    time.Time    `json:"addedAt"`
		VerifiedAt *time.Time   `json:"verifiedAt"`
		ElevationM *float64     `json:"elevationM"`
		Status     string       `json:"status"`
		Author     authorDoc    `json:"author"`
		Media      []mediaDoc   `json:"media"`
		Tags       []tagDoc     `json:"tags"`
		Comments   []commentDoc `json:"comments"`
	}

	authorDoc struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}

	mediaDoc struct {
		ID          uuid.UUID  `json:"id"`
		Type        string     `json:"type"`
		Path        string     `json:"path"`
		MimeType    *string    `json:"mimeType"`
		Width       *int       `json:"width"`
		Height      *int       `json:"height"`
		DurationSec *float64   `json:"durationSec"`
		CapturedAt  *time.Time `json:"capturedAt"`
		SortOrder   int        `json:"sortOrder"`
	}

	tagDoc struct {
		ID    uuid.UUID `json:"id"`
		Slug  string    `json:"slug"`
		Label string    `json:"label"`
	}

	commentDoc struct {
		ID        uuid.UUID  `json:"id"`
		Body      string     `json:"body"`
		VisitedAt *time.Time `json:"visitedAt"`
		CreatedAt time.Time  `json:"createdAt"`
		Status    string     `json:"status"`
		Author    *authorDoc `json:"author"`
	}
)

// Repo is an in-memory, read-only ViewpointRepo. It is safe for concurrent
// use: nothing is mutated after construction and results are copies.
type Repo struct {
	viewpoints []domain.Viewpoint // newest first, aggregates pre-sorted
	opts       repo.ViewpointRepoOptions
}

var _ repo.ViewpointRepo = (*Repo)(nil)

// NewRepo loads the embedded catalogue.
func NewRepo(opts repo.ViewpointRepoOptions) (*Repo, error) {
	return Load(catalogue, opts)
}

// Load builds a Repo from a JSON array of viewpoints in the API's wire shape
// (with status on viewpoints and comments).
func Load(data []byte, opts repo.ViewpointRepoOptions) (*Repo, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var docs []viewpointDoc
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("sample.Load: %w", err)
	}

	r := &Repo{opts: opts, viewpoints: make([]domain.Viewpoint, 0, len(docs))}
	seen := make(map[uuid.UUID]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID] {
			return nil, fmt.Errorf("sample.Load: duplicate viewpoint id %s", d.ID)
		}
		seen[d.ID] = true
		r.viewpoints = append(r.viewpoints, d.toDomain())
	}

	// Same order as the database: added_at then id, both descending.
	slices.SortFunc(r.viewpoints, func(a, b domain.Viewpoint) int {
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return r, nil
}

// List applies f to the catalogue.
func (r *Repo) List(ctx context.Context, f domain.ViewpointFilter) ([]domain.Viewpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sample.Repo.List: %w", err)
	}

	matched := []domain.Viewpoint{}
	for _, vp := range r.viewpoints {
		if vp.Status != domain.StatusPublished {
			continue
		}
		if f.Tag != "" && !hasTag(vp, f.Tag) {
			continue
		}

		var distance *float64
		if f.Near != nil {
			d := geo.HaversineMeters(f.Near.Latitude, f.Near.Longitude, vp.Coordinates.Latitude, vp.Coordinates.Longitude)
			if !(d <= f.Near.RadiusM) {
				continue
			}
			distance = &d
		}

		item := copyViewpoint(vp)
		item.Comments = nil
		item.DistanceM = distance
		matched = append(matched, item)
	}

	if f.Offset >= len(matched) {
		return []domain.Viewpoint{}, nil
	}
	end := min(f.Offset+f.Limit, len(matched))
	return matched[f.Offset:end], nil
}

// GetByID returns the viewpoint with its published comments.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Viewpoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.Viewpoint{}, fmt.Errorf("sample.Repo.GetByID: %w", err)
	}
	for _, vp := range r.viewpoints {
		if vp.ID != id {
			continue
		}
		if r.opts.DetailPublishedOnly && vp.Status != domain.StatusPublished {
			break
		}
		return copyViewpoint(vp), nil
	}
	return domain.Viewpoint{}, fmt.Errorf("sample.Repo.GetByID: %w", domain.ErrNotFound)
}

func hasTag(vp domain.Viewpoint, slug string) bool {
	return slices.ContainsFunc(vp.Tags, func(t domain.Tag) bool { return t.Slug == slug })
}

// copyViewpoint returns vp with fresh aggregate slices so callers cannot
// mutate the catalogue.
func copyViewpoint(vp domain.Viewpoint) domain.Viewpoint {
	vp.Media = slices.Clone(vp.Media)
	vp.Tags = slices.Clone(vp.Tags)
	vp.Comments = slices.Clone(vp.Comments)
	return vp
}

func (d viewpointDoc) toDomain() domain.Viewpoint {
	vp := domain.Viewpoint{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Coordinates: domain.Coordinates{
			Latitude:  d.Coordinates.Latitude,
			Longitude: d.Coordinates.Longitude,
		},
		CapturedAt: d.CapturedAt,
		AddedAt:    d.AddedAt,
		VerifiedAt: d.VerifiedAt,
		ElevationM: d.ElevationM,
		Status:     d.Status,
		Author:     domain.Author{ID: d.Author.ID, Name: d.Author.Name},
		Media:      make([]domain.MediaAsset, 0, len(d.Media)),
		Tags:       make([]domain.Tag, 0, len(d.Tags)),
		Comments:   []domain.Comment{},
	}

	for _, m := range d.Media {
		vp.Media = append(vp.Media, domain.MediaAsset{
			ID:          m.ID,
			Type:        m.Type,
			Path:        m.Path,
			MimeType:    m.MimeType,
			Width:       m.Width,
			Height:      m.Height,
			DurationSec: m.DurationSec,
			CapturedAt:  m.CapturedAt,
			SortOrder:   m.SortOrder,
		})
	}
	slices.SortStableFunc(vp.Media, func(a, b domain.MediaAsset) int { return cmp.Compare(a.SortOrder, b.SortOrder) })

	seen := make(map[uuid.UUID]bool, len(d.Tags))
	for _, t := range d.Tags {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		vp.Tags = append(vp.Tags, domain.Tag{ID: t.ID, Slug: t.Slug, Label: t.Label})
	}
	slices.SortStableFunc(vp.Tags, func(a, b domain.Tag) int { return cmp.Compare(a.Label, b.Label) })

	for _, c := range d.Comments {
		if c.Status != domain.StatusPublished {
			continue
		}
		comment := domain.Comment{
			ID:        c.ID,
			Body:      c.Body,
			VisitedAt: c.VisitedAt,
			CreatedAt: c.CreatedAt,
			Status:    c.Status,
		}
		if c.Author != nil {
			comment.Author = &domain.Author{ID: c.Author.ID, Name: c.Author.Name}
		}
		vp.Comments = append(vp.Comments, comment)
	}
	slices.SortStableFunc(vp.Comments, func(a, b domain.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })

	return vp
}
