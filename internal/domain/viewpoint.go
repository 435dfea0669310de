// Package domain contains the core data types for the Viewpoint Explorer API.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, handler, sample).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusPublished is the only viewpoint and comment status visible in listings.
const StatusPublished = "published"

// Coordinates is a WGS 84 point in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Author is the person credited with a viewpoint or a comment.
type Author struct {
	ID   uuid.UUID
	Name string
}

// Viewpoint is a scenic lookout in the catalogue.
// The aggregate owns its media, tags and (detail view only) comments.
//
// DistanceM is request-scoped: it is set only when a listing was asked for
// viewpoints near a reference point. Comments is nil for list items and
// non-nil (possibly empty) for detail items.
type Viewpoint struct {
	ID          uuid.UUID
	Title       string
	Description string
	Coordinates Coordinates
	CapturedAt  *time.Time
	AddedAt     time.Time
	VerifiedAt  *time.Time
	ElevationM  *float64
	DistanceM   *float64
	Status      string
	Author      Author
	Media       []MediaAsset
	Tags        []Tag
	Comments    []Comment
}

// MediaAsset is a photo or video attached to a viewpoint.
// Assets are always presented in ascending SortOrder.
type MediaAsset struct {
	ID          uuid.UUID
	Type        string
	Path        string
	MimeType    *string
	Width       *int
	Height      *int
	DurationSec *float64
	CapturedAt  *time.Time
	SortOrder   int
}

// Comment is a field report left on a viewpoint. Author is nil for
// anonymous comments. VisitedAt is the date of the visit, not of submission.
type Comment struct {
	ID        uuid.UUID
	Body      string
	VisitedAt *time.Time
	CreatedAt time.Time
	Status    string
	Author    *Author
}
