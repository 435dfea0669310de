package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx. Fixtures are normally
// written inside a transaction that the test rolls back.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BeginTx opens a transaction on the test database and rolls it back when the
// test finishes. Skips when TEST_DATABASE_URL is not set.
func BeginTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := NewPool(t)
	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.BeginTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// ViewpointFixture describes a viewpoint row to insert. Zero values get
// sensible defaults: status "published", added_at now.
type ViewpointFixture struct {
	Title      string
	Latitude   float64
	Longitude  float64
	AddedAt    time.Time
	Status     string
	ElevationM *float64
	AuthorID   uuid.UUID
}

// InsertAuthor inserts an author and returns its id.
func InsertAuthor(t *testing.T, q Querier, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO authors (display_name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.InsertAuthor: %v", err)
	}
	return id
}

// InsertViewpoint inserts a viewpoint and returns its id.
func InsertViewpoint(t *testing.T, q Querier, f ViewpointFixture) uuid.UUID {
	t.Helper()
	if f.Status == "" {
		f.Status = "published"
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now()
	}
	var id uuid.UUID
	err := q.QueryRow(context.Background(), `
		INSERT INTO viewpoints (title, geom, added_at, elevation_m, status, author_id)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6, $7)
		RETURNING id`,
		f.Title, f.Longitude, f.Latitude, f.AddedAt, f.ElevationM, f.Status, f.AuthorID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.InsertViewpoint: %v", err)
	}
	return id
}

// InsertTag inserts a tag and returns its id.
func InsertTag(t *testing.T, q Querier, slug, label string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO tags (slug, label) VALUES ($1, $2) RETURNING id`, slug, label).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.InsertTag: %v", err)
	}
	return id
}

// TagViewpoint links a tag to a viewpoint.
func TagViewpoint(t *testing.T, q Querier, viewpointID, tagID uuid.UUID) {
	t.Helper()
	_, err := q.Exec(context.Background(),
		`INSERT INTO viewpoint_tags (viewpoint_id, tag_id) VALUES ($1, $2)`, viewpointID, tagID)
	if err != nil {
		t.Fatalf("testutil.TagViewpoint: %v", err)
	}
}

// InsertMedia inserts a photo asset at the given sort position.
func InsertMedia(t *testing.T, q Querier, viewpointID uuid.UUID, path string, sortOrder int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(), `
		INSERT INTO media_assets (viewpoint_id, media_type, storage_path, mime_type, sort_order)
		VALUES ($1, 'photo', $2, 'image/jpeg', $3)
		RETURNING id`, viewpointID, path, sortOrder).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.InsertMedia: %v", err)
	}
	return id
}

// InsertComment inserts a comment. A nil authorID makes it anonymous.
func InsertComment(t *testing.T, q Querier, viewpointID uuid.UUID, authorID *uuid.UUID, body, status string, createdAt time.Time) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(), `
		INSERT INTO comments (viewpoint_id, author_id, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, viewpointID, authorID, body, status, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.InsertComment: %v", err)
	}
	return id
}
