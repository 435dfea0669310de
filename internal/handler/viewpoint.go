package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// ---- response types --------------------------------------------------------

type coordinatesJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type authorJSON struct {
	ID   openapi_types.UUID `json:"id"`
	Name string             `json:"name"`
}

type mediaJSON struct {
	ID          openapi_types.UUID `json:"id"`
	Type        string             `json:"type"`
	Path        string             `json:"path"`
	MimeType    *string            `json:"mimeType"`
	Width       *int               `json:"width"`
	Height      *int               `json:"height"`
	DurationSec *float64           `json:"durationSec"`
	CapturedAt  *time.Time         `json:"capturedAt"`
	SortOrder   int                `json:"sortOrder"`
}

type tagJSON struct {
	ID    openapi_types.UUID `json:"id"`
	Slug  string             `json:"slug"`
	Label string             `json:"label"`
}

type commentJSON struct {
	ID        openapi_types.UUID `json:"id"`
	Body      string             `json:"body"`
	VisitedAt *time.Time         `json:"visitedAt"`
	CreatedAt time.Time          `json:"createdAt"`
	Status    string             `json:"status"`
	Author    *authorJSON        `json:"author"`
}

// listItem is one element of GET /api/viewpoints. Nullable fields are
// serialised as null, never omitted.
type listItem struct {
	ID          openapi_types.UUID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Coordinates coordinatesJSON    `json:"coordinates"`
	CapturedAt  *time.Time         `json:"capturedAt"`
	AddedAt     time.Time          `json:"addedAt"`
	VerifiedAt  *time.Time         `json:"verifiedAt"`
	ElevationM  *float64           `json:"elevationM"`
	DistanceM   *float64           `json:"distanceM"`
	Status      string             `json:"status"`
	Author      authorJSON         `json:"author"`
	Media       []mediaJSON        `json:"media"`
	Tags        []tagJSON          `json:"tags"`
}

// detailItem is the body of GET /api/viewpoints/{id}.
type detailItem struct {
	listItem
	Comments []commentJSON `json:"comments"`
}

type paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type listResponse struct {
	Data   []listItem `json:"data"`
	Paging paging     `json:"paging"`
}

// ---- GET /api/viewpoints ---------------------------------------------------

// ListViewpoints handles GET /api/viewpoints.
// Supports ?near_lat=, ?near_lng=, ?radius= (meters, default 5000), ?tag=,
// ?limit= (default 12, max 50) and ?offset= (default 0). Values that do not
// parse are treated as absent.
func (s *Server) ListViewpoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.NewViewpointFilter(
		queryParam[float64](q, "near_lat"),
		queryParam[float64](q, "near_lng"),
		queryParam[float64](q, "radius"),
		queryParam[string](q, "tag"),
		queryParam[int](q, "limit"),
		queryParam[int](q, "offset"),
	)

	viewpoints, err := s.viewpoints.List(r.Context(), f)
	if err != nil {
		s.serverError(w, r, "viewpoints.list", "failed to list viewpoints", err)
		return
	}

	data := make([]listItem, len(viewpoints))
	for i, vp := range viewpoints {
		data[i] = viewpointToListItem(vp)
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data: data,
		Paging: paging{
			Limit:  f.Limit,
			Offset: f.Offset,
			Count:  len(data),
		},
	})
}

// queryParam binds an optional form-style query parameter. A missing or
// malformed value yields nil.
func queryParam[T any](q url.Values, name string) *T {
	var v *T
	if err := runtime.BindQueryParameter("form", true, false, name, q, &v); err != nil {
		return nil
	}
	return v
}

// ---- GET /api/viewpoints/{id} ----------------------------------------------

// GetViewpoint handles GET /api/viewpoints/{id}.
// An id that is not a UUID cannot exist and is answered like any unknown id.
func (s *Server) GetViewpoint(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("viewpoint not found"))
		return
	}

	vp, err := s.viewpoints.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("viewpoint not found"))
			return
		}
		s.serverError(w, r, "viewpoints.get", "failed to fetch viewpoint", err)
		return
	}

	writeJSON(w, http.StatusOK, viewpointToDetailItem(vp))
}

// ---- mapping ---------------------------------------------------------------

func viewpointToListItem(vp domain.Viewpoint) listItem {
	item := listItem{
		ID:          vp.ID,
		Title:       vp.Title,
		Description: vp.Description,
		Coordinates: coordinatesJSON{
			Latitude:  vp.Coordinates.Latitude,
			Longitude: vp.Coordinates.Longitude,
		},
		CapturedAt: vp.CapturedAt,
		AddedAt:    vp.AddedAt,
		VerifiedAt: vp.VerifiedAt,
		ElevationM: vp.ElevationM,
		DistanceM:  vp.DistanceM,
		Status:     vp.Status,
		Author:     authorJSON{ID: vp.Author.ID, Name: vp.Author.Name},
		Media:      make([]mediaJSON, len(vp.Media)),
		Tags:       make([]tagJSON, len(vp.Tags)),
	}
	for i, m := range vp.Media {
		item.Media[i] = mediaJSON{
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
	for i, t := range vp.Tags {
		item.Tags[i] = tagJSON{ID: t.ID, Slug: t.Slug, Label: t.Label}
	}
	return item
}

func viewpointToDetailItem(vp domain.Viewpoint) detailItem {
	item := detailItem{
		listItem: viewpointToListItem(vp),
		Comments: make([]commentJSON, len(vp.Comments)),
	}
	for i, c := range vp.Comments {
		item.Comments[i] = commentJSON{
			ID:        c.ID,
			Body:      c.Body,
			VisitedAt: c.VisitedAt,
			CreatedAt: c.CreatedAt,
			Status:    c.Status,
		}
		if c.Author != nil {
			item.Comments[i].Author = &authorJSON{ID: c.Author.ID, Name: c.Author.Name}
		}
	}
	return item
}
