// Package migrations embeds the PostgreSQL schema scripts.
package migrations

import "embed"

// FS holds the ordered *.sql migration scripts.
//
//go:embed *.sql
var FS embed.FS
