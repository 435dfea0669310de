// Package migrations embeds the SQL migration files so they can be applied
// by the goose programmatic API from the migrate command and from tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// 00001 creates the PostGIS catalogue schema; 00002 seeds the Mount Hood
// sample catalogue that the frontend opens on.
//
//go:embed *.sql
var FS embed.FS
