// Package migrations embeds the goose schema migrations for each SQL dialect.
package migrations

import "embed"

// FS holds one directory of migrations per dialect: sqlite and postgres.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
