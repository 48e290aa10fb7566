package migrations

import "embed"

// FS contains embedded SQLite migrations for shipment storage.
//
//go:embed *.sql
var FS embed.FS
