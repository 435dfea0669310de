package repo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/viewpoint-explorer/backend/internal/domain"
)

// queryBuilder accumulates WHERE predicates and their bound values while
// owning the positional parameter bookkeeping. Predicates are written with
// "?" placeholders; AddPredicate rewrites each one to the absolute "$n"
// position of its value, so predicates can be added or dropped without any
// index arithmetic at the call site.
type queryBuilder struct {
	params     []any
	predicates []string
}

// AddPredicate appends a predicate template and its values. The i-th "?" in
// template binds values[i]. It returns the absolute positions assigned to
// the values, in order, for callers that need to reference a bound value a
// second time (e.g. the distance projection reusing the reference point).
//
// A mismatch between placeholders and values is a programming error and panics.
func (b *queryBuilder) AddPredicate(template string, values ...any) []int {
	if n := strings.Count(template, "?"); n != len(values) {
		panic(fmt.Sprintf("repo: predicate %q has %d placeholders but %d values", template, n, len(values)))
	}

	positions := make([]int, 0, len(values))
	var sb strings.Builder
	next := 0
	for _, r := range template {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}
		b.params = append(b.params, values[next])
		next++
		pos := len(b.params)
		positions = append(positions, pos)
		sb.WriteString("$" + strconv.Itoa(pos))
	}

	b.predicates = append(b.predicates, sb.String())
	return positions
}

// Page binds limit and offset after every predicate and returns their
// positions. It must be called last: the window parameters are always the
// final two bound values.
func (b *queryBuilder) Page(limit, offset int) (limitPos, offsetPos int) {
	b.params = append(b.params, limit, offset)
	return len(b.params) - 1, len(b.params)
}

// Where renders the accumulated predicates joined with AND, or "" when there
// are none.
func (b *queryBuilder) Where() string {
	if len(b.predicates) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.predicates, " AND ")
}

// Args returns the bound values in positional order.
func (b *queryBuilder) Args() []any {
	return b.params
}

// Predicate templates.
const (
	predPublished = `v.status = ?`
	predWithin    = `ST_DWithin(v.geom::geography, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)`
	predHasTag    = `EXISTS (SELECT 1 FROM viewpoint_tags vt JOIN tags t ON t.id = vt.tag_id WHERE vt.viewpoint_id = v.id AND t.slug = ?)`
	predID        = `v.id = ?`
)

// queryShape selects the optional parts of the rendered viewpoint query.
type queryShape struct {
	// page, when set, windows the base set: {limit position, offset position}.
	page *[2]int
	// distance, when set, projects distance_m from the reference point:
	// {longitude position, latitude position}.
	distance *[2]int
	// comments adds the published-comment aggregation stage.
	comments bool
}

// buildListQuery renders the listing query for f. The base set is always
// restricted to published viewpoints, sorted newest first (id breaks ties so
// consecutive pages never overlap) and windowed
// before media and tags are aggregated, so a viewpoint is either returned
// whole or not at all.
func buildListQuery(f domain.ViewpointFilter) (string, []any) {
	var (
		b     queryBuilder
		shape queryShape
	)

	b.AddPredicate(predPublished, domain.StatusPublished)

	if f.Near != nil {
		pos := b.AddPredicate(predWithin, f.Near.Longitude, f.Near.Latitude, f.Near.RadiusM)
		shape.distance = &[2]int{pos[0], pos[1]}
	}
	if f.Tag != "" {
		b.AddPredicate(predHasTag, f.Tag)
	}

	limitPos, offsetPos := b.Page(f.Limit, f.Offset)
	shape.page = &[2]int{limitPos, offsetPos}

	return renderViewpointQuery(b.Where(), shape), b.Args()
}

// buildDetailQuery renders the single-viewpoint query with the comment
// aggregation stage. publishedOnly additionally requires the viewpoint
// itself to be published.
func buildDetailQuery(id uuid.UUID, publishedOnly bool) (string, []any) {
	var b queryBuilder
	b.AddPredicate(predID, id)
	if publishedOnly {
		b.AddPredicate(predPublished, domain.StatusPublished)
	}
	return renderViewpointQuery(b.Where(), queryShape{comments: true}), b.Args()
}

// renderViewpointQuery assembles the CTE pipeline:
//
//	base      filtered, sorted (and optionally windowed) viewpoints
//	media     assets per viewpoint ordered by sort_order
//	tag_data  tags per viewpoint ordered by label
//	comments  published comments per viewpoint, newest first (detail only)
//
// Each aggregation is grouped by viewpoint_id and LEFT JOINed back to base,
// which yields exactly one row per base viewpoint.
func renderViewpointQuery(where string, shape queryShape) string {
	var q strings.Builder

	q.WriteString(`
		WITH base AS (
			SELECT
				v.id,
				v.title,
				COALESCE(v.description, '') AS description,
				v.geom,
				v.captured_at,
				v.added_at,
				v.verified_at,
				v.elevation_m::float8 AS elevation_m,
				v.status,
				a.id AS author_id,
				a.display_name AS author_name,
				ST_Y(v.geom) AS latitude,
				ST_X(v.geom) AS longitude
			FROM viewpoints v
			JOIN authors a ON a.id = v.author_id
			`)
	q.WriteString(where)
	q.WriteString(`
			ORDER BY v.added_at DESC, v.id DESC`)
	if shape.page != nil {
		fmt.Fprintf(&q, `
			LIMIT $%d
			OFFSET $%d`, shape.page[0], shape.page[1])
	}
	q.WriteString(`
		),
		media AS (
			SELECT ma.viewpoint_id,
			       json_agg(
			         jsonb_build_object(
			           'id', ma.id,
			           'type', ma.media_type,
			           'path', ma.storage_path,
			           'mimeType', ma.mime_type,
			           'width', ma.width,
			           'height', ma.height,
			           'durationSec', ma.duration_sec,
			           'capturedAt', ma.captured_at,
			           'sortOrder', ma.sort_order
			         ) ORDER BY ma.sort_order
			       ) AS assets
			FROM media_assets ma
			WHERE ma.viewpoint_id IN (SELECT id FROM base)
			GROUP BY ma.viewpoint_id
		),
		tag_data AS (
			SELECT vt.viewpoint_id,
			       json_agg(
			         jsonb_build_object('id', t.id, 'slug', t.slug, 'label', t.label)
			         ORDER BY t.label
			       ) AS tags
			FROM viewpoint_tags vt
			JOIN tags t ON t.id = vt.tag_id
			WHERE vt.viewpoint_id IN (SELECT id FROM base)
			GROUP BY vt.viewpoint_id
		)`)
	if shape.comments {
		q.WriteString(`,
		comment_data AS (
			SELECT c.viewpoint_id,
			       json_agg(
			         jsonb_build_object(
			           'id', c.id,
			           'body', c.body,
			           'visitedAt', c.visited_at,
			           'createdAt', c.created_at,
			           'status', c.status,
			           'author', CASE WHEN ca.id IS NOT NULL
			                          THEN jsonb_build_object('id', ca.id, 'name', ca.display_name)
			                          ELSE NULL END
			         ) ORDER BY c.created_at DESC
			       ) AS comments
			FROM comments c
			LEFT JOIN authors ca ON ca.id = c.author_id
			WHERE c.viewpoint_id IN (SELECT id FROM base) AND c.status = 'published'
			GROUP BY c.viewpoint_id
		)`)
	}
	q.WriteString(`
		SELECT
			b.id,
			b.title,
			b.description,
			b.author_id,
			b.author_name,
			b.latitude,
			b.longitude,
			b.captured_at,
			b.added_at,
			b.verified_at,
			b.elevation_m,
			b.status,
			COALESCE(m.assets, '[]'::json) AS media,
			COALESCE(t.tags, '[]'::json) AS tags`)
	if shape.comments {
		q.WriteString(`,
			COALESCE(cd.comments, '[]'::json) AS comments`)
	}
	if shape.distance != nil {
		fmt.Fprintf(&q, `,
			ST_Distance(b.geom::geography, ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography) AS distance_m`,
			shape.distance[0], shape.distance[1])
	}
	q.WriteString(`
		FROM base b
		LEFT JOIN media m ON m.viewpoint_id = b.id
		LEFT JOIN tag_data t ON t.viewpoint_id = b.id`)
	if shape.comments {
		q.WriteString(`
		LEFT JOIN comment_data cd ON cd.viewpoint_id = b.id`)
	}
	q.WriteString(`
		ORDER BY b.added_at DESC, b.id DESC`)

	return q.String()
}
