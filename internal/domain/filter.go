package domain

import "math"

const (
	// DefaultLimit is the page size used when the request does not supply one.
	DefaultLimit = 12
	// MaxLimit caps the page size to prevent runaway queries.
	MaxLimit = 50
	// DefaultRadiusM is the search radius used when a reference point is
	// given without a usable radius.
	DefaultRadiusM = 5000.0
)

// Near is a reference point for a proximity search.
type Near struct {
	Latitude  float64
	Longitude float64
	RadiusM   float64
}

// ViewpointFilter carries the normalised list parameters from the HTTP layer
// to the repo layer. Near is nil when no usable reference point was supplied;
// Tag is empty when no tag filter applies.
type ViewpointFilter struct {
	Near   *Near
	Tag    string
	Limit  int
	Offset int
}

// NewViewpointFilter builds a ViewpointFilter from optional query values.
// Invalid input is never an error: a non-finite latitude or longitude drops
// the proximity search entirely, a missing or non-finite radius becomes
// DefaultRadiusM, limit falls back to DefaultLimit when missing or below 1
// and is capped at MaxLimit, and a negative offset becomes 0.
func NewViewpointFilter(nearLat, nearLng, radius *float64, tag *string, limit, offset *int) ViewpointFilter {
	f := ViewpointFilter{Limit: DefaultLimit}

	if isFinite(nearLat) && isFinite(nearLng) {
		r := DefaultRadiusM
		if isFinite(radius) {
			r = *radius
		}
		f.Near = &Near{Latitude: *nearLat, Longitude: *nearLng, RadiusM: r}
	}
	if tag != nil {
		f.Tag = *tag
	}
	if limit != nil && *limit >= 1 {
		f.Limit = min(*limit, MaxLimit)
	}
	if offset != nil {
		f.Offset = max(*offset, 0)
	}
	return f
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
