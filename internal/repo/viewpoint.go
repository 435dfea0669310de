// Package repo contains all database access logic for the Viewpoint Explorer API.
// It owns the SQL: predicate assembly, the aggregation query and the mapping
// of aggregated rows into domain types. No business logic lives here.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, pgx.Tx
// and pgxmock pools. Integration tests pass a transaction that is rolled back
// after each test; unit tests pass a pgxmock pool.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ViewpointRepo defines the read operations on the viewpoint catalogue.
// The service layer depends on this interface; the Postgres implementation
// and the in-memory sample catalogue both satisfy it.
type ViewpointRepo interface {
	// List returns one page of published viewpoints matching f, newest first,
	// each with its media and tags. DistanceM is set when f.Near is set.
	List(ctx context.Context, f domain.ViewpointFilter) ([]domain.Viewpoint, error)

	// GetByID returns a single viewpoint with media, tags and published
	// comments. Returns domain.ErrNotFound if no such viewpoint is visible.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Viewpoint, error)
}

// ViewpointRepoOptions tunes the Postgres repository.
type ViewpointRepoOptions struct {
	// DetailPublishedOnly makes GetByID ignore viewpoints that are not
	// published. When false any viewpoint can be fetched by its id.
	DetailPublishedOnly bool
}

// pgViewpointRepo is the Postgres/PostGIS implementation of ViewpointRepo.
type pgViewpointRepo struct {
	db   db
	opts ViewpointRepoOptions
}

// NewViewpointRepo constructs a ViewpointRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx or a pgxmock pool.
func NewViewpointRepo(db db, opts ViewpointRepoOptions) ViewpointRepo {
	return &pgViewpointRepo{db: db, opts: opts}
}

// List runs the aggregated listing query for f.
func (r *pgViewpointRepo) List(ctx context.Context, f domain.ViewpointFilter) ([]domain.Viewpoint, error) {
	q, args := buildListQuery(f)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("repo.ViewpointRepo.List: %w", err)
	}
	defer rows.Close()

	withDistance := f.Near != nil
	viewpoints := []domain.Viewpoint{}
	for rows.Next() {
		row, err := scanViewpointRow(rows, false, withDistance)
		if err != nil {
			return nil, fmt.Errorf("repo.ViewpointRepo.List: scan: %w", err)
		}
		viewpoints = append(viewpoints, toListItem(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ViewpointRepo.List: rows: %w", err)
	}
	return viewpoints, nil
}

// GetByID runs the aggregated detail query for a single viewpoint.
func (r *pgViewpointRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Viewpoint, error) {
	q, args := buildDetailQuery(id, r.opts.DetailPublishedOnly)

	row, err := scanViewpointRow(r.db.QueryRow(ctx, q, args...), true, false)
	if err != nil {
		return domain.Viewpoint{}, fmt.Errorf("repo.ViewpointRepo.GetByID: %w", err)
	}
	return toDetailItem(row), nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanViewpointRow
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanViewpointRow scans the columns rendered by renderViewpointQuery.
// The comments and distance_m columns are present only for the matching
// query shape, in that order, after the tags column.
func scanViewpointRow(s scanner, withComments, withDistance bool) (viewpointRow, error) {
	var row viewpointRow
	dest := []any{
		&row.ID,
		&row.Title,
		&row.Description,
		&row.AuthorID,
		&row.AuthorName,
		&row.Latitude,
		&row.Longitude,
		&row.CapturedAt,
		&row.AddedAt,
		&row.VerifiedAt,
		&row.ElevationM,
		&row.Status,
		&row.Media,
		&row.Tags,
	}
	if withComments {
		dest = append(dest, &row.Comments)
	}
	if withDistance {
		dest = append(dest, &row.DistanceM)
	}

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return viewpointRow{}, domain.ErrNotFound
		}
		return viewpointRow{}, err
	}
	return row, nil
}
