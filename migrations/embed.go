// Package migrations holds the goose SQL migrations for PostgreSQL.
package migrations

import "embed"

// FS contains every migration file so the migrate binary needs no files on disk
//
//go:embed *.sql
var FS embed.FS
