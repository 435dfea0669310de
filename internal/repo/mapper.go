package repo

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// viewpointRow mirrors one row of the aggregated viewpoint query.
// Nullable columns are pointers; the media, tags and comments aggregates are
// kept as raw JSON so that a malformed document only loses that one list.
type viewpointRow struct {
	ID          pgtype.UUID
	Title       string
	Description string
	AuthorID    pgtype.UUID
	AuthorName  string
	Latitude    float64
	Longitude   float64
	CapturedAt  *time.Time
	AddedAt     time.Time
	VerifiedAt  *time.Time
	ElevationM  *float64
	Status      string
	Media       []byte
	Tags        []byte
	Comments    []byte
	DistanceM   *float64
}

// JSON documents produced by jsonb_build_object in the aggregation stages.
type (
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

	authorDoc struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
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

// toListItem maps a row into a viewpoint without comments.
// It never fails: a media or tags document that cannot be decoded is logged
// and replaced by an empty list.
func toListItem(row viewpointRow) domain.Viewpoint {
	id := uuid.UUID(row.ID.Bytes)

	vp := domain.Viewpoint{
		ID:          id,
		Title:       row.Title,
		Description: row.Description,
		Coordinates: domain.Coordinates{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		CapturedAt: row.CapturedAt,
		AddedAt:    row.AddedAt,
		VerifiedAt: row.VerifiedAt,
		ElevationM: row.ElevationM,
		DistanceM:  row.DistanceM,
		Status:     row.Status,
		Author: domain.Author{
			ID:   uuid.UUID(row.AuthorID.Bytes),
			Name: row.AuthorName,
		},
	}

	media := decodeJSONList[mediaDoc]("media", id, row.Media)
	vp.Media = make([]domain.MediaAsset, len(media))
	for i, m := range media {
		vp.Media[i] = domain.MediaAsset{
			ID:          m.ID,
			Type:        m.Type,
			Path:        m.Path,
			MimeType:    m.MimeType,
			Width:       m.Width,
			Height:      m.Height,
			DurationSec: m.DurationSec,
			CapturedAt:  m.CapturedAt,
			SortOrder:   m.SortOrder,
		}
	}

	tags := decodeJSONList[tagDoc]("tags", id, row.Tags)
	vp.Tags = make([]domain.Tag, len(tags))
	for i, t := range tags {
		vp.Tags[i] = domain.Tag{ID: t.ID, Slug: t.Slug, Label: t.Label}
	}

	return vp
}

// toDetailItem maps a row into a viewpoint including its comments.
// Comments is always non-nil on the result.
func toDetailItem(row viewpointRow) domain.Viewpoint {
	vp := toListItem(row)

	comments := decodeJSONList[commentDoc]("comments", vp.ID, row.Comments)
	vp.Comments = make([]domain.Comment, len(comments))
	for i, c := range comments {
		vp.Comments[i] = domain.Comment{
			ID:        c.ID,
			Body:      c.Body,
			VisitedAt: c.VisitedAt,
			CreatedAt: c.CreatedAt,
			Status:    c.Status,
		}
		if c.Author != nil {
			vp.Comments[i].Author = &domain.Author{ID: c.Author.ID, Name: c.Author.Name}
		}
	}
	return vp
}

// decodeJSONList decodes an aggregated JSON array column.
// Empty input, a JSON null, or a document that fails to decode all yield an
// empty, non-nil slice; decode failures are logged with the column name.
func decodeJSONList[T any](column string, viewpointID uuid.UUID, raw []byte) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("unable to parse aggregated column",
			"column", column,
			"viewpoint_id", viewpointID,
			"error", err,
		)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
