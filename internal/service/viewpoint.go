// Package service contains the business logic for the Viewpoint Explorer API.
// Services orchestrate repo calls and record query metrics.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
	"github.com/pkordes/viewpoint-explorer/backend/internal/metrics"
	"github.com/pkordes/viewpoint-explorer/backend/internal/repo"
)

// Operation labels used for query metrics.
const (
	opList = "list"
	opGet  = "get"
)

// ViewpointService implements the read operations on the catalogue.
type ViewpointService struct {
	viewpoints repo.ViewpointRepo
	metrics    *metrics.Metrics
}

// NewViewpointService constructs a ViewpointService backed by the provided
// repo. m may be nil when metrics are disabled.
func NewViewpointService(viewpoints repo.ViewpointRepo, m *metrics.Metrics) *ViewpointService {
	return &ViewpointService{viewpoints: viewpoints, metrics: m}
}

// List returns one page of published viewpoints for f, which must come from
// domain.NewViewpointFilter. The result is never nil.
func (s *ViewpointService) List(ctx context.Context, f domain.ViewpointFilter) ([]domain.Viewpoint, error) {
	start := time.Now()
	items, err := s.viewpoints.List(ctx, f)
	s.metrics.RecordQuery(opList, len(items), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Viewpoint{}
	}
	return items, nil
}

// GetByID returns a single viewpoint with its published comments.
// Returns domain.ErrNotFound if it does not exist.
func (s *ViewpointService) GetByID(ctx context.Context, id uuid.UUID) (domain.Viewpoint, error) {
	start := time.Now()
	vp, err := s.viewpoints.GetByID(ctx, id)
	s.metrics.RecordQuery(opGet, 1, err, time.Since(start))
	if err != nil {
		return domain.Viewpoint{}, err
	}
	if vp.Comments == nil {
		vp.Comments = []domain.Comment{}
	}
	return vp, nil
}
