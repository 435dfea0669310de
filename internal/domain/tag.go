package domain

import "github.com/google/uuid"

// Tag is a global label applied to viewpoints.
// Slug is the URL-safe identity used for filtering; Label is the display
// name and the sort key when a viewpoint's tags are listed.
type Tag struct {
	ID    uuid.UUID
	Slug  string
	Label string
}
