package migrations

import "embed"

// FS contains embedded SQLite migrations for tasks storage.
//
//go:embed *.sql
var FS embed.FS
