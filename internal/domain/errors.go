package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// viewpoint does not exist (or is not visible).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")
